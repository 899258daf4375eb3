package locks

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLockUnavailable is returned when a lock could not be obtained before the
// context expired.
var ErrLockUnavailable = errors.New("locks: lock unavailable")

// Locker serialises work on a key. Acquire blocks until the lock is held or
// ctx is done. The returned release func is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Local is an in-process Locker keyed by string.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	slot chan struct{}
	refs int
}

// NewLocal returns a Locker that serialises callers within one process.
func NewLocal() *Local {
	return &Local{entries: make(map[string]*entry)}
}

func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	e := l.checkout(key)
	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		l.checkin(key, e)
		return nil, fmt.Errorf("%w: %s: %w", ErrLockUnavailable, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.slot
			l.checkin(key, e)
		})
	}, nil
}

func (l *Local) checkout(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{slot: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Local) checkin(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Noop satisfies Locker without serialising anything.
type Noop struct{}

func (Noop) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// NavigationKey scopes a lock to one navigation.
func NavigationKey(navigationID fmt.Stringer) string {
	return "navtree:navigation:" + navigationID.String()
}

// HandleKey scopes a lock to one navigation handle.
func HandleKey(handle string) string {
	return "navtree:handle:" + handle
}
