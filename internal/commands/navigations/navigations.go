package navigationscmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-navtree/internal/commands"
	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/internal/navigations"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	createNavigationMessageType = "navtree.navigations.create"
	deleteNavigationMessageType = "navtree.navigations.delete"
)

// CreateNavigationCommand registers a navigation. LegacySettings, when
// set, is parsed with navigations.ParseSettings and replaces Settings.
type CreateNavigationCommand struct {
	Name           string
	Handle         string
	Settings       navigations.Settings
	LegacySettings map[string]any
	Result         *navigations.Navigation
}

// Type implements command.Message.
func (CreateNavigationCommand) Type() string { return createNavigationMessageType }

// Validate satisfies command.Message.
func (m CreateNavigationCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&m.Settings),
	)
}

// DeleteNavigationCommand removes a navigation and all of its nodes. ID
// wins over Handle when both are set.
type DeleteNavigationCommand struct {
	ID     uuid.UUID
	Handle string
}

// Type implements command.Message.
func (DeleteNavigationCommand) Type() string { return deleteNavigationMessageType }

// Validate satisfies command.Message.
func (m DeleteNavigationCommand) Validate() error {
	if m.ID == uuid.Nil && strings.TrimSpace(m.Handle) == "" {
		return validation.Errors{"id": validation.NewError("validation_required", "id or handle is required")}
	}
	return nil
}

// CreateNavigationHandler registers navigations.
type CreateNavigationHandler struct {
	inner *commands.Handler[CreateNavigationCommand]
}

// NewCreateNavigationHandler constructs a create handler.
func NewCreateNavigationHandler(service navigations.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CreateNavigationCommand]) *CreateNavigationHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CreateNavigationCommand) error {
		settings := msg.Settings
		if msg.LegacySettings != nil {
			parsed, err := navigations.ParseSettings(msg.LegacySettings)
			if err != nil {
				return err
			}
			settings = parsed
		}
		nav, err := service.Create(ctx, navigations.CreateNavigationInput{
			Name:     msg.Name,
			Handle:   msg.Handle,
			Settings: settings,
		})
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = *nav
		}
		logging.WithFields(baseLogger, map[string]any{
			"navigation_id": nav.ID.String(),
			"handle":        nav.Handle,
		}).Info("navigations.command.created")
		return nil
	}

	handlerOpts := []commands.HandlerOption[CreateNavigationCommand]{
		commands.WithLogger[CreateNavigationCommand](baseLogger),
		commands.WithOperation[CreateNavigationCommand]("navigations.create"),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &CreateNavigationHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CreateNavigationCommand].
func (h *CreateNavigationHandler) Execute(ctx context.Context, msg CreateNavigationCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteNavigationHandler removes navigations.
type DeleteNavigationHandler struct {
	inner *commands.Handler[DeleteNavigationCommand]
}

// NewDeleteNavigationHandler constructs a delete handler.
func NewDeleteNavigationHandler(service navigations.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteNavigationCommand]) *DeleteNavigationHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg DeleteNavigationCommand) error {
		id := msg.ID
		if id == uuid.Nil {
			nav, err := service.GetByHandle(ctx, msg.Handle)
			if err != nil {
				return err
			}
			id = nav.ID
		}
		if err := service.Delete(ctx, id); err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"navigation_id": id.String(),
		}).Info("navigations.command.deleted")
		return nil
	}

	handlerOpts := []commands.HandlerOption[DeleteNavigationCommand]{
		commands.WithLogger[DeleteNavigationCommand](baseLogger),
		commands.WithOperation[DeleteNavigationCommand]("navigations.delete"),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &DeleteNavigationHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteNavigationCommand].
func (h *DeleteNavigationHandler) Execute(ctx context.Context, msg DeleteNavigationCommand) error {
	return h.inner.Execute(ctx, msg)
}
