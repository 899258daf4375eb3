package nodescmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-navtree/internal/commands"
	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/goliatone/go-navtree/pkg/interfaces"
)

// CreateNodeHandler adds nodes after the policy accepts them.
type CreateNodeHandler struct {
	inner *commands.Handler[CreateNodeCommand]
}

// NewCreateNodeHandler constructs a create handler.
func NewCreateNodeHandler(service nodes.Service, policy *Policy, logger interfaces.Logger, opts ...commands.HandlerOption[CreateNodeCommand]) *CreateNodeHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CreateNodeCommand) error {
		if err := policy.CheckCreate(ctx, msg); err != nil {
			return err
		}
		node, err := service.Create(ctx, msg.input())
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = *node
		}
		logging.WithNavigationContext(baseLogger, node.NavigationID.String(), node.Locale, node.ID.String()).
			Info("nodes.command.created")
		return nil
	}

	handlerOpts := []commands.HandlerOption[CreateNodeCommand]{
		commands.WithLogger[CreateNodeCommand](baseLogger),
		commands.WithOperation[CreateNodeCommand]("nodes.create"),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &CreateNodeHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CreateNodeCommand].
func (h *CreateNodeHandler) Execute(ctx context.Context, msg CreateNodeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpdateNodeHandler edits node fields.
type UpdateNodeHandler struct {
	inner *commands.Handler[UpdateNodeCommand]
}

// NewUpdateNodeHandler constructs an update handler.
func NewUpdateNodeHandler(service nodes.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateNodeCommand]) *UpdateNodeHandler {
	exec := func(ctx context.Context, msg UpdateNodeCommand) error {
		_, err := service.Update(ctx, nodes.UpdateNodeInput{
			NodeID:    msg.NodeID,
			Name:      msg.Name,
			URL:       msg.URL,
			ListClass: msg.ListClass,
			Blank:     msg.Blank,
			Enabled:   msg.Enabled,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[UpdateNodeCommand]{
		commands.WithLogger[UpdateNodeCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[UpdateNodeCommand]("nodes.update"),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &UpdateNodeHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UpdateNodeCommand].
func (h *UpdateNodeHandler) Execute(ctx context.Context, msg UpdateNodeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// MoveNodeHandler repositions nodes inside their navigation.
type MoveNodeHandler struct {
	inner *commands.Handler[MoveNodeCommand]
}

// NewMoveNodeHandler constructs a move handler.
func NewMoveNodeHandler(service nodes.Service, policy *Policy, logger interfaces.Logger, opts ...commands.HandlerOption[MoveNodeCommand]) *MoveNodeHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg MoveNodeCommand) error {
		if err := policy.CheckMove(ctx, msg); err != nil {
			return err
		}
		var (
			node *nodes.Node
			err  error
		)
		if msg.TargetID != nil {
			node, err = service.Place(ctx, nodes.PlaceNodeInput{
				NodeID:   msg.NodeID,
				TargetID: *msg.TargetID,
				Position: msg.Position,
			})
		} else {
			node, err = service.Move(ctx, nodes.MoveNodeInput{
				NodeID:   msg.NodeID,
				ParentID: msg.ParentID,
				AfterID:  msg.AfterID,
			})
		}
		if err != nil {
			return err
		}
		logging.WithNavigationContext(baseLogger, node.NavigationID.String(), node.Locale, node.ID.String()).
			Info("nodes.command.moved", "order", node.Order)
		return nil
	}

	handlerOpts := []commands.HandlerOption[MoveNodeCommand]{
		commands.WithLogger[MoveNodeCommand](baseLogger),
		commands.WithOperation[MoveNodeCommand]("nodes.move"),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &MoveNodeHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[MoveNodeCommand].
func (h *MoveNodeHandler) Execute(ctx context.Context, msg MoveNodeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteNodeHandler removes nodes and their subtrees.
type DeleteNodeHandler struct {
	inner *commands.Handler[DeleteNodeCommand]
}

// NewDeleteNodeHandler constructs a delete handler. Deleting a missing
// node succeeds without changes.
func NewDeleteNodeHandler(service nodes.Service, policy *Policy, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteNodeCommand]) *DeleteNodeHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg DeleteNodeCommand) error {
		if err := policy.CheckDelete(ctx, msg); err != nil {
			if errors.Is(err, nodes.ErrNodeNotFound) {
				return nil
			}
			return err
		}
		deleted, err := service.Delete(ctx, msg.NodeID)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"node_id": msg.NodeID.String(),
			"deleted": deleted,
		}).Info("nodes.command.deleted")
		return nil
	}

	handlerOpts := []commands.HandlerOption[DeleteNodeCommand]{
		commands.WithLogger[DeleteNodeCommand](baseLogger),
		commands.WithOperation[DeleteNodeCommand]("nodes.delete"),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &DeleteNodeHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteNodeCommand].
func (h *DeleteNodeHandler) Execute(ctx context.Context, msg DeleteNodeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenumberNavigationHandler repairs sibling order for a navigation locale.
type RenumberNavigationHandler struct {
	inner *commands.Handler[RenumberNavigationCommand]
}

// NewRenumberNavigationHandler constructs a renumber handler.
func NewRenumberNavigationHandler(service nodes.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RenumberNavigationCommand]) *RenumberNavigationHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RenumberNavigationCommand) error {
		changed, err := service.Renumber(ctx, msg.NavigationID, msg.Locale)
		if err != nil {
			return err
		}
		logging.WithNavigationContext(baseLogger, msg.NavigationID.String(), msg.Locale, "").
			Info("nodes.command.renumbered", "changed", changed)
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenumberNavigationCommand]{
		commands.WithLogger[RenumberNavigationCommand](baseLogger),
		commands.WithOperation[RenumberNavigationCommand]("nodes.renumber"),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &RenumberNavigationHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RenumberNavigationCommand].
func (h *RenumberNavigationHandler) Execute(ctx context.Context, msg RenumberNavigationCommand) error {
	return h.inner.Execute(ctx, msg)
}
