// Package migrations creates the navigation tables for bun backed storage.
package migrations

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-navtree/internal/navigations"
	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/uptrace/bun"
)

var ErrInvalidStep = errors.New("migrations: step requires a name and a function")

// StepFunc applies one schema step. Steps must be idempotent.
type StepFunc func(ctx context.Context, db bun.IDB) error

type step struct {
	name string
	fn   StepFunc
}

// Registry holds ordered schema steps.
type Registry struct {
	mu    sync.RWMutex
	steps []step
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Default returns the registry with the navigation and node tables.
func Default() *Registry {
	r := NewRegistry()
	_ = r.Register("0001_navigations", createTable((*navigations.Navigation)(nil)))
	_ = r.Register("0002_navigation_nodes", createTable((*nodes.Node)(nil)))
	_ = r.Register("0003_navigation_nodes_indexes", createIndexes((*nodes.Node)(nil), map[string][]string{
		"idx_navigation_nodes_navigation_locale": {"navigation_id", "locale"},
		"idx_navigation_nodes_parent":            {"parent_id"},
		"idx_navigation_nodes_element":           {"linked_element_id", "linked_element_type"},
	}))
	return r
}

// Register appends a step. Names must be unique.
func (r *Registry) Register(name string, fn StepFunc) error {
	name = strings.TrimSpace(name)
	if r == nil || name == "" || fn == nil {
		return ErrInvalidStep
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.ContainsFunc(r.steps, func(s step) bool { return s.name == name }) {
		return fmt.Errorf("migrations: step %q already registered", name)
	}
	r.steps = append(r.steps, step{name: name, fn: fn})
	return nil
}

// Names lists the registered steps in execution order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.steps))
	for _, s := range r.steps {
		names = append(names, s.name)
	}
	return names
}

// Migrate runs every step inside one transaction.
func (r *Registry) Migrate(ctx context.Context, db *bun.DB) error {
	if r == nil {
		return ErrInvalidStep
	}
	r.mu.RLock()
	steps := slices.Clone(r.steps)
	r.mu.RUnlock()

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, s := range steps {
			if err := s.fn(ctx, tx); err != nil {
				return fmt.Errorf("migrations: %s: %w", s.name, err)
			}
		}
		return nil
	})
}

func createTable(model any) StepFunc {
	return func(ctx context.Context, db bun.IDB) error {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		return err
	}
}

func createIndexes(model any, indexes map[string][]string) StepFunc {
	names := make([]string, 0, len(indexes))
	for name := range indexes {
		names = append(names, name)
	}
	slices.Sort(names)
	return func(ctx context.Context, db bun.IDB) error {
		for _, name := range names {
			_, err := db.NewCreateIndex().
				Model(model).
				Index(name).
				IfNotExists().
				Column(indexes[name]...).
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	}
}
