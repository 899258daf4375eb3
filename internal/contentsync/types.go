package contentsync

import (
	"github.com/goliatone/go-navtree/pkg/interfaces"
	"github.com/google/uuid"
)

// Change is a content lifecycle record consumed by the Reactor.
type Change interface {
	change()
}

// ElementSaved reports a created or updated content entity. Previous is the
// persisted state before the save and is nil for new entities.
type ElementSaved struct {
	Previous *interfaces.ContentEntity
	Current  interfaces.ContentEntity
}

// ElementDeleted reports a removed content entity. An empty Locale matches
// every locale.
type ElementDeleted struct {
	ElementID   uuid.UUID
	ElementType string
	Locale      string
}

func (ElementSaved) change()   {}
func (ElementDeleted) change() {}

// MutationKind names what a Mutation does to a node.
type MutationKind string

const (
	MutationRefresh MutationKind = "refresh"
	MutationDelete  MutationKind = "delete"
)

// Mutation is one node change derived from a content change.
type Mutation struct {
	Kind         MutationKind `json:"kind"`
	NodeID       uuid.UUID    `json:"node_id"`
	NavigationID uuid.UUID    `json:"navigation_id"`
	Locale       string       `json:"locale"`
	ElementID    uuid.UUID    `json:"element_id"`
	// Name is set only when the node label follows the entity title.
	Name    *string `json:"name,omitempty"`
	URL     string  `json:"url,omitempty"`
	Enabled bool    `json:"enabled"`
	Reason  string  `json:"reason,omitempty"`
}

const (
	reasonSaved       = "element_saved"
	reasonAncestorURI = "ancestor_uri_changed"
	reasonDeleted     = "element_deleted"
	reasonUnresolved  = "element_unresolved"
	reasonReconciled  = "reconciled"
)
