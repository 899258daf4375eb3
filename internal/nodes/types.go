package nodes

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SiteURLPlaceholder is substituted with the configured site url when a
// tree is assembled.
const SiteURLPlaceholder = "{siteUrl}"

// homeURI marks the content entity served at the site root.
const homeURI = "__home__"

// Node is one entry in a navigation tree.
type Node struct {
	bun.BaseModel `bun:"table:navigation_nodes,alias:nn"`

	ID                uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	NavigationID      uuid.UUID  `bun:"navigation_id,notnull,type:uuid" json:"navigation_id"`
	ParentID          *uuid.UUID `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	Order             int        `bun:"sort_order,notnull" json:"order"`
	Name              string     `bun:"name,notnull" json:"name"`
	URL               string     `bun:"url" json:"url,omitempty"`
	ListClass         string     `bun:"list_class" json:"list_class,omitempty"`
	Blank             bool       `bun:"blank,notnull" json:"blank"`
	Enabled           bool       `bun:"enabled,notnull" json:"enabled"`
	LinkedElementID   *uuid.UUID `bun:"linked_element_id,type:uuid" json:"linked_element_id,omitempty"`
	LinkedElementType string     `bun:"linked_element_type" json:"linked_element_type,omitempty"`
	Locale            string     `bun:"locale,notnull" json:"locale"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// IsRoot reports whether the node sits at the top level of its tree.
func (n *Node) IsRoot() bool {
	return n.ParentID == nil || *n.ParentID == uuid.Nil
}

// IsLinked reports whether the node mirrors a content entity.
func (n *Node) IsLinked() bool {
	return n.LinkedElementID != nil && *n.LinkedElementID != uuid.Nil
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cloned := *n
	cloned.ParentID = cloneUUIDPtr(n.ParentID)
	cloned.LinkedElementID = cloneUUIDPtr(n.LinkedElementID)
	return &cloned
}

// HierarchyChange is applied atomically by NodeRepository.ApplyHierarchy.
// Update entries persist parent_id and sort_order only.
type HierarchyChange struct {
	Delete []uuid.UUID
	Update []*Node
}

// Empty reports whether the change has nothing to write.
func (c HierarchyChange) Empty() bool {
	return len(c.Delete) == 0 && len(c.Update) == 0
}

// Position places a node relative to a target node.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionChild  Position = "child"
)

// CreateNodeInput captures the data required to add a node.
type CreateNodeInput struct {
	// ID is optional; a random id is assigned when nil.
	ID           *uuid.UUID
	NavigationID uuid.UUID
	ParentID     *uuid.UUID
	Name         string
	URL          string
	ListClass    string
	Blank        bool
	// Enabled defaults to true when nil.
	Enabled           *bool
	LinkedElementID   *uuid.UUID
	LinkedElementType string
	Locale            string
}

// UpdateNodeInput carries a partial update. Parent and order are owned by Move.
type UpdateNodeInput struct {
	NodeID    uuid.UUID
	Name      *string
	URL       *string
	ListClass *string
	Blank     *bool
	Enabled   *bool
}

// MoveNodeInput reparents a node. A nil AfterID places it first.
type MoveNodeInput struct {
	NodeID   uuid.UUID
	ParentID *uuid.UUID
	AfterID  *uuid.UUID
}

// PlaceNodeInput positions a node relative to TargetID.
type PlaceNodeInput struct {
	NodeID   uuid.UUID
	TargetID uuid.UUID
	Position Position
}

// RefreshLinkedInput writes the fields mirrored from a content entity.
type RefreshLinkedInput struct {
	NodeID  uuid.UUID
	Name    *string
	URL     string
	Enabled bool
}

// LinkedURL derives the stored url of a linked node from the entity uri.
func LinkedURL(uri string) string {
	uri = strings.TrimSpace(uri)
	if uri == homeURI {
		uri = ""
	}
	return SiteURLPlaceholder + strings.TrimPrefix(uri, "/")
}

// NormalizeURL prefixes bare "www." hosts with a scheme.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(trimmed), "www") {
		return "http://" + trimmed
	}
	return trimmed
}

func cloneUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	value := *id
	return &value
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	return parentKey(a) == parentKey(b)
}

// parentKey maps nil and uuid.Nil parents onto the root group.
func parentKey(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

func parentPtr(key uuid.UUID) *uuid.UUID {
	if key == uuid.Nil {
		return nil
	}
	return &key
}
