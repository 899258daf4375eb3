package contentsync

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-navtree/pkg/interfaces"
	"github.com/google/uuid"
)

// Tracker adapts before-save, after-save and after-delete notifications into
// change records. The state captured by BeforeSave is held until the
// matching AfterSave.
type Tracker struct {
	reactor *Reactor

	mu      sync.Mutex
	pending map[elementKey]interfaces.ContentEntity
}

type elementKey struct {
	id          uuid.UUID
	elementType string
	locale      string
}

func keyOf(entity interfaces.ContentEntity) elementKey {
	return elementKey{
		id:          entity.ID,
		elementType: strings.ToLower(strings.TrimSpace(entity.Type)),
		locale:      strings.TrimSpace(entity.Locale),
	}
}

// NewTracker constructs a tracker forwarding changes to reactor.
func NewTracker(reactor *Reactor) *Tracker {
	return &Tracker{
		reactor: reactor,
		pending: make(map[elementKey]interfaces.ContentEntity),
	}
}

// BeforeSave records the persisted state of an entity about to be saved.
func (t *Tracker) BeforeSave(_ context.Context, previous interfaces.ContentEntity) {
	if previous.ID == uuid.Nil {
		return
	}
	t.mu.Lock()
	t.pending[keyOf(previous)] = previous
	t.mu.Unlock()
}

// AfterSave applies the save of current against the state captured by
// BeforeSave, if any.
func (t *Tracker) AfterSave(ctx context.Context, current interfaces.ContentEntity) ([]Mutation, error) {
	t.mu.Lock()
	key := keyOf(current)
	previous, ok := t.pending[key]
	delete(t.pending, key)
	t.mu.Unlock()

	change := ElementSaved{Current: current}
	if ok {
		change.Previous = &previous
	}
	return t.reactor.Apply(ctx, change)
}

// AfterDelete applies the removal of an entity. Any pending before-save
// state for it is dropped.
func (t *Tracker) AfterDelete(ctx context.Context, elementID uuid.UUID, elementType, locale string) ([]Mutation, error) {
	t.mu.Lock()
	for key := range t.pending {
		if key.id == elementID {
			delete(t.pending, key)
		}
	}
	t.mu.Unlock()

	return t.reactor.Apply(ctx, ElementDeleted{
		ElementID:   elementID,
		ElementType: elementType,
		Locale:      locale,
	})
}

// Pending reports how many before-save states await their after-save.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
