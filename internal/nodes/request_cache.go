package nodes

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type requestCacheKey struct{}

type listKey struct {
	navigationID uuid.UUID
	locale       string
}

// RequestCache memoises node lists for the lifetime of one request. It is
// never shared process wide; writes through the service invalidate it.
type RequestCache struct {
	mu    sync.Mutex
	lists map[listKey][]*Node
}

// NewRequestCache returns an empty request cache.
func NewRequestCache() *RequestCache {
	return &RequestCache{lists: make(map[listKey][]*Node)}
}

// WithRequestCache attaches cache to ctx.
func WithRequestCache(ctx context.Context, cache *RequestCache) context.Context {
	if cache == nil {
		return ctx
	}
	return context.WithValue(ctx, requestCacheKey{}, cache)
}

// RequestCacheFrom returns the cache attached to ctx, if any.
func RequestCacheFrom(ctx context.Context) *RequestCache {
	if ctx == nil {
		return nil
	}
	cache, _ := ctx.Value(requestCacheKey{}).(*RequestCache)
	return cache
}

func (c *RequestCache) get(navigationID uuid.UUID, locale string) ([]*Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	records, ok := c.lists[listKey{navigationID, locale}]
	if !ok {
		return nil, false
	}
	return cloneNodes(records), true
}

func (c *RequestCache) put(navigationID uuid.UUID, locale string, records []*Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[listKey{navigationID, locale}] = cloneNodes(records)
}

// Invalidate drops the memoised list of one navigation locale. An empty
// locale drops every locale of the navigation.
func (c *RequestCache) Invalidate(navigationID uuid.UUID, locale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.lists {
		if key.navigationID == navigationID && (locale == "" || key.locale == locale) {
			delete(c.lists, key)
		}
	}
}

// Len reports how many lists are memoised.
func (c *RequestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lists)
}

func cloneNodes(records []*Node) []*Node {
	out := make([]*Node, len(records))
	for i, node := range records {
		out[i] = node.Clone()
	}
	return out
}
