package di

import (
	"context"
	"sync"

	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/google/uuid"
)

// navigationLookupProxy lets the node service be built before the
// navigation service that depends on it.
type navigationLookupProxy struct {
	mu     sync.RWMutex
	lookup nodes.NavigationLookup
}

func (p *navigationLookupProxy) bind(lookup nodes.NavigationLookup) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if lookup != nil {
		p.lookup = lookup
	}
}

func (p *navigationLookupProxy) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	p.mu.RLock()
	lookup := p.lookup
	p.mu.RUnlock()
	if lookup == nil {
		return true, nil
	}
	return lookup.Exists(ctx, id)
}
