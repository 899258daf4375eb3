package synccmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-navtree/internal/commands"
	"github.com/goliatone/go-navtree/internal/contentsync"
	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	elementSavedMessageType        = "navtree.sync.element.saved"
	elementDeletedMessageType      = "navtree.sync.element.deleted"
	reconcileNavigationMessageType = "navtree.sync.reconcile"
)

// ElementSavedCommand reports a content entity save. Previous is the
// persisted state before the save, when known.
type ElementSavedCommand struct {
	Previous *interfaces.ContentEntity
	Current  interfaces.ContentEntity
}

// Type implements command.Message.
func (ElementSavedCommand) Type() string { return elementSavedMessageType }

// Validate satisfies command.Message.
func (m ElementSavedCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Current, validation.By(entityIdentified)),
		validation.Field(&m.Previous, validation.By(func(value any) error {
			previous, _ := value.(*interfaces.ContentEntity)
			if previous == nil {
				return nil
			}
			if previous.ID != m.Current.ID {
				return validation.NewError("validation_entity_mismatch", "must describe the same entity")
			}
			return nil
		})),
	)
}

// ElementDeletedCommand reports a content entity removal.
type ElementDeletedCommand struct {
	ElementID   uuid.UUID
	ElementType string
	Locale      string
}

// LogFields implements commands.Fielder.
func (m ElementDeletedCommand) LogFields() map[string]any {
	return map[string]any{"element_id": m.ElementID.String(), "element_type": m.ElementType}
}

// Type implements command.Message.
func (ElementDeletedCommand) Type() string { return elementDeletedMessageType }

// Validate satisfies command.Message.
func (m ElementDeletedCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ElementID, validation.By(nonNilUUID)),
		validation.Field(&m.ElementType, validation.Required),
	)
}

// ReconcileNavigationCommand re-resolves every linked node of a navigation.
type ReconcileNavigationCommand struct {
	NavigationID uuid.UUID
	Locale       string
}

// LogFields implements commands.Fielder.
func (m ReconcileNavigationCommand) LogFields() map[string]any {
	return map[string]any{"navigation_id": m.NavigationID.String(), "locale": m.Locale}
}

// Type implements command.Message.
func (ReconcileNavigationCommand) Type() string { return reconcileNavigationMessageType }

// Validate satisfies command.Message.
func (m ReconcileNavigationCommand) Validate() error {
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

func entityIdentified(value any) error {
	entity, _ := value.(interfaces.ContentEntity)
	if entity.ID == uuid.Nil || entity.Type == "" {
		return validation.NewError("validation_entity_required", "entity id and type are required")
	}
	return nil
}

// ElementSavedHandler applies content saves to linked nodes.
type ElementSavedHandler struct {
	inner *commands.Handler[ElementSavedCommand]
}

// NewElementSavedHandler constructs a save handler.
func NewElementSavedHandler(reactor *contentsync.Reactor, logger interfaces.Logger, opts ...commands.HandlerOption[ElementSavedCommand]) *ElementSavedHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ElementSavedCommand) error {
		mutations, err := reactor.Apply(ctx, contentsync.ElementSaved{Previous: msg.Previous, Current: msg.Current})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"element_id":   msg.Current.ID.String(),
			"element_type": msg.Current.Type,
		}).Info("sync.command.saved", "mutations", len(mutations))
		return nil
	}

	handlerOpts := []commands.HandlerOption[ElementSavedCommand]{
		commands.WithLogger[ElementSavedCommand](baseLogger),
		commands.WithOperation[ElementSavedCommand]("sync.element.saved"),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &ElementSavedHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ElementSavedCommand].
func (h *ElementSavedHandler) Execute(ctx context.Context, msg ElementSavedCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ElementDeletedHandler removes nodes linked to deleted content.
type ElementDeletedHandler struct {
	inner *commands.Handler[ElementDeletedCommand]
}

// NewElementDeletedHandler constructs a delete handler.
func NewElementDeletedHandler(reactor *contentsync.Reactor, logger interfaces.Logger, opts ...commands.HandlerOption[ElementDeletedCommand]) *ElementDeletedHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ElementDeletedCommand) error {
		mutations, err := reactor.Apply(ctx, contentsync.ElementDeleted{
			ElementID:   msg.ElementID,
			ElementType: msg.ElementType,
			Locale:      msg.Locale,
		})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"element_id":   msg.ElementID.String(),
			"element_type": msg.ElementType,
		}).Info("sync.command.deleted", "mutations", len(mutations))
		return nil
	}

	handlerOpts := []commands.HandlerOption[ElementDeletedCommand]{
		commands.WithLogger[ElementDeletedCommand](baseLogger),
		commands.WithOperation[ElementDeletedCommand]("sync.element.deleted"),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &ElementDeletedHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ElementDeletedCommand].
func (h *ElementDeletedHandler) Execute(ctx context.Context, msg ElementDeletedCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ReconcileNavigationHandler runs a full reconciliation pass.
type ReconcileNavigationHandler struct {
	inner *commands.Handler[ReconcileNavigationCommand]
}

// NewReconcileNavigationHandler constructs a reconcile handler.
func NewReconcileNavigationHandler(reactor *contentsync.Reactor, logger interfaces.Logger, opts ...commands.HandlerOption[ReconcileNavigationCommand]) *ReconcileNavigationHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ReconcileNavigationCommand) error {
		mutations, err := reactor.Reconcile(ctx, msg.NavigationID, msg.Locale)
		if err != nil {
			return err
		}
		logging.WithNavigationContext(baseLogger, msg.NavigationID.String(), msg.Locale, "").
			Info("sync.command.reconciled", "mutations", len(mutations))
		return nil
	}

	handlerOpts := []commands.HandlerOption[ReconcileNavigationCommand]{
		commands.WithLogger[ReconcileNavigationCommand](baseLogger),
		commands.WithOperation[ReconcileNavigationCommand]("sync.reconcile"),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &ReconcileNavigationHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ReconcileNavigationCommand].
func (h *ReconcileNavigationHandler) Execute(ctx context.Context, msg ReconcileNavigationCommand) error {
	return h.inner.Execute(ctx, msg)
}
