package nodescmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/google/uuid"
)

const (
	createNodeMessageType         = "navtree.nodes.create"
	updateNodeMessageType         = "navtree.nodes.update"
	moveNodeMessageType           = "navtree.nodes.move"
	deleteNodeMessageType         = "navtree.nodes.delete"
	renumberNavigationMessageType = "navtree.nodes.renumber"
)

// CreateNodeCommand adds a node to a navigation.
type CreateNodeCommand struct {
	ID                *uuid.UUID
	NavigationID      uuid.UUID
	ParentID          *uuid.UUID
	Name              string
	URL               string
	ListClass         string
	Blank             bool
	Enabled           *bool
	LinkedElementID   *uuid.UUID
	LinkedElementType string
	Locale            string
	// Admin bypasses the navigation depth limit.
	Admin bool
	// Result receives the created node when non-nil.
	Result *nodes.Node
}

// Type implements command.Message.
func (CreateNodeCommand) Type() string { return createNodeMessageType }

// Validate satisfies command.Message.
func (m CreateNodeCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.NavigationID, validation.By(nonNilUUID)),
		validation.Field(&m.Name, validation.When(m.LinkedElementID == nil, validation.Required)),
		validation.Field(&m.LinkedElementType, validation.When(m.LinkedElementID != nil, validation.Required)),
	)
}

func (m CreateNodeCommand) input() nodes.CreateNodeInput {
	return nodes.CreateNodeInput{
		ID:                m.ID,
		NavigationID:      m.NavigationID,
		ParentID:          m.ParentID,
		Name:              m.Name,
		URL:               m.URL,
		ListClass:         m.ListClass,
		Blank:             m.Blank,
		Enabled:           m.Enabled,
		LinkedElementID:   m.LinkedElementID,
		LinkedElementType: m.LinkedElementType,
		Locale:            m.Locale,
	}
}

// LogFields implements commands.Fielder.
func (m CreateNodeCommand) LogFields() map[string]any {
	fields := map[string]any{"navigation_id": m.NavigationID.String(), "admin": m.Admin}
	if m.ParentID != nil {
		fields["parent_id"] = m.ParentID.String()
	}
	return fields
}

// UpdateNodeCommand edits node fields. Nil pointers are left unchanged.
type UpdateNodeCommand struct {
	NodeID    uuid.UUID
	Name      *string
	URL       *string
	ListClass *string
	Blank     *bool
	Enabled   *bool
}

// Type implements command.Message.
func (UpdateNodeCommand) Type() string { return updateNodeMessageType }

// Validate satisfies command.Message.
func (m UpdateNodeCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.NodeID, validation.By(nonNilUUID)),
		validation.Field(&m.Name, validation.NilOrNotEmpty),
	)
}

// LogFields implements commands.Fielder.
func (m UpdateNodeCommand) LogFields() map[string]any {
	return map[string]any{"node_id": m.NodeID.String()}
}

// MoveNodeCommand repositions a node. Either ParentID/AfterID (tree
// editor drops) or TargetID/Position (relative placement) is used.
type MoveNodeCommand struct {
	NodeID   uuid.UUID
	ParentID *uuid.UUID
	AfterID  *uuid.UUID
	TargetID *uuid.UUID
	Position nodes.Position
	Admin    bool
}

// Type implements command.Message.
func (MoveNodeCommand) Type() string { return moveNodeMessageType }

// Validate satisfies command.Message.
func (m MoveNodeCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.NodeID, validation.By(nonNilUUID)),
		validation.Field(&m.Position,
			validation.When(m.TargetID != nil, validation.Required,
				validation.In(nodes.PositionBefore, nodes.PositionAfter, nodes.PositionChild)),
			validation.When(m.TargetID == nil, validation.Empty),
		),
	)
}

// LogFields implements commands.Fielder.
func (m MoveNodeCommand) LogFields() map[string]any {
	fields := map[string]any{"node_id": m.NodeID.String(), "admin": m.Admin}
	if m.TargetID != nil {
		fields["target_id"] = m.TargetID.String()
		fields["position"] = string(m.Position)
	}
	return fields
}

// DeleteNodeCommand removes a node and its subtree.
type DeleteNodeCommand struct {
	NodeID uuid.UUID
	Admin  bool
}

// Type implements command.Message.
func (DeleteNodeCommand) Type() string { return deleteNodeMessageType }

// Validate satisfies command.Message.
func (m DeleteNodeCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.NodeID, validation.By(nonNilUUID)),
	)
}

// LogFields implements commands.Fielder.
func (m DeleteNodeCommand) LogFields() map[string]any {
	return map[string]any{"node_id": m.NodeID.String(), "admin": m.Admin}
}

// RenumberNavigationCommand rewrites sibling order to a dense sequence.
type RenumberNavigationCommand struct {
	NavigationID uuid.UUID
	Locale       string
}

// Type implements command.Message.
func (RenumberNavigationCommand) Type() string { return renumberNavigationMessageType }

// Validate satisfies command.Message.
func (m RenumberNavigationCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.NavigationID, validation.By(nonNilUUID)),
	)
}

func nonNilUUID(value any) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

