// Package navtree maintains ordered navigation trees: node lifecycle,
// sibling ordering, tree assembly and synchronisation with content.
package navtree

import (
	"context"

	"github.com/goliatone/go-navtree/internal/contentsync"
	"github.com/goliatone/go-navtree/internal/di"
	"github.com/goliatone/go-navtree/internal/navigations"
	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/goliatone/go-navtree/internal/structures"
	"github.com/goliatone/go-navtree/internal/tree"
	"github.com/goliatone/go-navtree/pkg/activity"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	"github.com/google/uuid"
)

// NavigationService exports the navigation registry contract.
type NavigationService = navigations.Service

// NodeService exports the node lifecycle contract.
type NodeService = nodes.Service

// StructureService exports the structure query contract.
type StructureService = structures.Service

type (
	Navigation            = navigations.Navigation
	NavigationSettings    = navigations.Settings
	CreateNavigationInput = navigations.CreateNavigationInput
	UpdateNavigationInput = navigations.UpdateNavigationInput
	Node                  = nodes.Node
	CreateNodeInput       = nodes.CreateNodeInput
	UpdateNodeInput       = nodes.UpdateNodeInput
	MoveNodeInput         = nodes.MoveNodeInput
	PlaceNodeInput        = nodes.PlaceNodeInput
	Position              = nodes.Position
	TreeNode              = tree.TreeNode
	ParentOption          = tree.ParentOption
	StructureParams       = structures.Params
	Structure             = structures.Structure
	ContentEntity         = interfaces.ContentEntity
	Mutation              = contentsync.Mutation
)

const (
	PositionBefore = nodes.PositionBefore
	PositionAfter  = nodes.PositionAfter
	PositionChild  = nodes.PositionChild
)

// Module is the navigation runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using cfg and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Migrate creates the storage tables when bun storage is configured.
func (m *Module) Migrate(ctx context.Context) error {
	return m.container.Migrate(ctx)
}

// Navigations returns the navigation registry.
func (m *Module) Navigations() NavigationService {
	return m.container.NavigationService()
}

// Nodes returns the node lifecycle service.
func (m *Module) Nodes() NodeService {
	return m.container.NodeService()
}

// Structures returns the structure query service.
func (m *Module) Structures() StructureService {
	return m.container.StructureService()
}

// Commands returns the command handlers.
func (m *Module) Commands() *di.Commands {
	return m.container.Commands()
}

// ContentSaving records the persisted state of an entity before it is saved.
func (m *Module) ContentSaving(ctx context.Context, previous ContentEntity) {
	m.container.Tracker().BeforeSave(ctx, previous)
}

// ContentSaved reconciles linked nodes after an entity save.
func (m *Module) ContentSaved(ctx context.Context, current ContentEntity) ([]Mutation, error) {
	return m.container.Tracker().AfterSave(ctx, current)
}

// ContentDeleted removes nodes linked to a deleted entity.
func (m *Module) ContentDeleted(ctx context.Context, current ContentEntity) ([]Mutation, error) {
	return m.container.Tracker().AfterDelete(ctx, current.ID, current.Type, current.Locale)
}

// ParseStructureParams reads a template style parameter bag.
func ParseStructureParams(raw map[string]any) (StructureParams, error) {
	return structures.ParseParams(raw)
}

// ParseNavigationSettings decodes a legacy loose settings bag.
func ParseNavigationSettings(raw map[string]any) (NavigationSettings, error) {
	return navigations.ParseSettings(raw)
}

// WithActivePath injects the current request path used for active matching.
func WithActivePath(ctx context.Context, path string) context.Context {
	return structures.ContextWithActivePath(ctx, path)
}

// WithActor records who performs the following changes on emitted activity.
func WithActor(ctx context.Context, actor uuid.UUID) context.Context {
	return activity.WithActor(ctx, actor)
}
