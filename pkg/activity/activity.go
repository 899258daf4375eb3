// Package activity fans navigation change events out to registered hooks.
package activity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event describes a single navigation change.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives emitted events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, event Event) error

func (f HookFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Hooks is an ordered hook list.
type Hooks []Hook

// Config toggles emission and stamps a default channel on events.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter dispatches events to every hook. A nil emitter is disabled.
type Emitter struct {
	hooks Hooks
	cfg   Config
	now   func() time.Time
}

// NewEmitter constructs an emitter over hooks.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	filtered := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			filtered = append(filtered, hook)
		}
	}
	return &Emitter{hooks: filtered, cfg: cfg, now: time.Now}
}

// Enabled reports whether Emit delivers events.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit fills defaults and notifies every hook. Hook errors are joined and
// do not stop delivery to the remaining hooks.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Verb) == "" || strings.TrimSpace(event.ObjectType) == "" {
		return ErrEventIncomplete
	}
	if event.Channel == "" {
		event.Channel = e.cfg.Channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now().UTC()
	}
	if event.ActorID == "" {
		if actor := ActorFrom(ctx); actor != uuid.Nil {
			event.ActorID = actor.String()
		}
	}

	var errs []error
	for _, hook := range e.hooks {
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ErrEventIncomplete is returned for events without a verb or object type.
var ErrEventIncomplete = errors.New("activity: event requires verb and object type")

type actorKey struct{}

// WithActor records the acting user on ctx. Emitted events without an
// explicit actor pick it up.
func WithActor(ctx context.Context, actor uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored with WithActor.
func ActorFrom(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	actor, _ := ctx.Value(actorKey{}).(uuid.UUID)
	return actor
}

// CaptureHook records events in memory.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, event)
	return nil
}
