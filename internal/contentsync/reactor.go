// Package contentsync keeps linked navigation nodes consistent with the
// content entities they mirror.
package contentsync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	"github.com/google/uuid"
)

// ErrUnknownChange is returned for change records the reactor cannot handle.
var ErrUnknownChange = errors.New("contentsync: unknown change record")

// NodeLifecycle is the subset of the node service the reactor writes through.
type NodeLifecycle interface {
	List(ctx context.Context, navigationID uuid.UUID, locale string) ([]*nodes.Node, error)
	ListByElement(ctx context.Context, elementID uuid.UUID, elementType, locale string) ([]*nodes.Node, error)
	RefreshLinked(ctx context.Context, input nodes.RefreshLinkedInput) (*nodes.Node, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Option configures a Reactor.
type Option func(*Reactor)

// WithContentLookup enables descendant propagation and Reconcile.
func WithContentLookup(lookup interfaces.ContentEntityLookup) Option {
	return func(r *Reactor) {
		r.content = lookup
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Reactor) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Reactor turns content change records into node mutations. Sync failures
// caused by unresolvable entities degrade to node deletes.
type Reactor struct {
	nodes   NodeLifecycle
	content interfaces.ContentEntityLookup
	logger  interfaces.Logger
}

// NewReactor constructs a reactor writing through lifecycle.
func NewReactor(lifecycle NodeLifecycle, opts ...Option) *Reactor {
	r := &Reactor{
		nodes:  lifecycle,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Plan computes the mutations a change implies without writing them.
func (r *Reactor) Plan(ctx context.Context, change Change) ([]Mutation, error) {
	switch c := change.(type) {
	case ElementSaved:
		return r.planSaved(ctx, c)
	case *ElementSaved:
		if c == nil {
			return nil, ErrUnknownChange
		}
		return r.planSaved(ctx, *c)
	case ElementDeleted:
		return r.planDeleted(ctx, c)
	case *ElementDeleted:
		if c == nil {
			return nil, ErrUnknownChange
		}
		return r.planDeleted(ctx, *c)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownChange, change)
	}
}

// Apply plans change and writes the resulting mutations through the node
// lifecycle. It returns the mutations that were applied.
func (r *Reactor) Apply(ctx context.Context, change Change) ([]Mutation, error) {
	planned, err := r.Plan(ctx, change)
	if err != nil {
		return nil, err
	}
	return r.apply(ctx, planned)
}

// Reconcile re-resolves every linked node of a navigation locale. Nodes
// whose entity cannot be resolved are deleted.
func (r *Reactor) Reconcile(ctx context.Context, navigationID uuid.UUID, locale string) ([]Mutation, error) {
	if r.content == nil {
		return nil, nil
	}
	flat, err := r.nodes.List(ctx, navigationID, locale)
	if err != nil {
		return nil, err
	}

	var planned []Mutation
	for _, node := range flat {
		if !node.IsLinked() {
			continue
		}
		entity, err := r.content.GetByID(ctx, *node.LinkedElementID, node.LinkedElementType, node.Locale)
		if err != nil && !errors.Is(err, interfaces.ErrContentEntityNotFound) {
			logging.WithNavigationContext(r.logger.WithContext(ctx), node.NavigationID.String(), node.Locale, node.ID.String()).
				Warn("sync.element.lookup_failed",
					"element_id", node.LinkedElementID.String(),
					"element_type", node.LinkedElementType,
					"error", err,
				)
			continue
		}
		if entity == nil {
			r.unresolved(ctx, node, err)
			planned = append(planned, deleteMutation(node, reasonUnresolved))
			continue
		}
		if m, ok := refreshMutation(node, *entity, nil, reasonReconciled); ok {
			planned = append(planned, m)
		}
	}
	return r.apply(ctx, planned)
}

func (r *Reactor) planSaved(ctx context.Context, change ElementSaved) ([]Mutation, error) {
	current := change.Current
	if current.ID == uuid.Nil {
		return nil, nil
	}
	linked, err := r.nodes.ListByElement(ctx, current.ID, normalizeType(current.Type), current.Locale)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(linked))
	var planned []Mutation
	for _, node := range linked {
		seen[node.ID] = true
		if m, ok := refreshMutation(node, current, change.Previous, reasonSaved); ok {
			planned = append(planned, m)
		}
	}

	if r.content == nil || !uriChanged(change.Previous, current, linked) {
		return planned, nil
	}

	descendants, err := r.content.GetDescendantsOf(ctx, current.ID, current.Type, current.Locale)
	if err != nil {
		r.logger.WithContext(ctx).Warn("sync.descendants.lookup_failed",
			"element_id", current.ID.String(),
			"element_type", current.Type,
			"error", err,
		)
		return planned, nil
	}
	for _, descendant := range descendants {
		nested, err := r.nodes.ListByElement(ctx, descendant.ID, normalizeType(descendant.Type), descendant.Locale)
		if err != nil {
			return nil, err
		}
		for _, node := range nested {
			if seen[node.ID] {
				continue
			}
			seen[node.ID] = true
			if m, ok := refreshMutation(node, descendant, nil, reasonAncestorURI); ok {
				planned = append(planned, m)
			}
		}
	}
	return planned, nil
}

// uriChanged reports whether descendants need their URLs recomputed. Without
// a before-save state the stored URLs of the linked nodes are compared.
func uriChanged(previous *interfaces.ContentEntity, current interfaces.ContentEntity, linked []*nodes.Node) bool {
	if previous != nil && previous.URI != current.URI {
		return true
	}
	want := nodes.LinkedURL(current.URI)
	return slices.ContainsFunc(linked, func(node *nodes.Node) bool {
		return node.URL != want
	})
}

func (r *Reactor) planDeleted(ctx context.Context, change ElementDeleted) ([]Mutation, error) {
	if change.ElementID == uuid.Nil {
		return nil, nil
	}
	linked, err := r.nodes.ListByElement(ctx, change.ElementID, normalizeType(change.ElementType), change.Locale)
	if err != nil {
		return nil, err
	}
	planned := make([]Mutation, 0, len(linked))
	for _, node := range linked {
		planned = append(planned, deleteMutation(node, reasonDeleted))
	}
	return planned, nil
}

func (r *Reactor) apply(ctx context.Context, planned []Mutation) ([]Mutation, error) {
	applied := make([]Mutation, 0, len(planned))
	for _, m := range planned {
		logger := logging.WithNavigationContext(r.logger.WithContext(ctx), m.NavigationID.String(), m.Locale, m.NodeID.String())
		switch m.Kind {
		case MutationDelete:
			removed, err := r.nodes.Delete(ctx, m.NodeID)
			if err != nil {
				return applied, err
			}
			if !removed {
				// already gone with an ancestor deleted earlier in the batch
				continue
			}
			logger.Info("sync.node.deleted", "reason", m.Reason, "element_id", m.ElementID.String())
		case MutationRefresh:
			_, err := r.nodes.RefreshLinked(ctx, nodes.RefreshLinkedInput{
				NodeID:  m.NodeID,
				Name:    m.Name,
				URL:     m.URL,
				Enabled: m.Enabled,
			})
			if errors.Is(err, nodes.ErrNodeNotFound) {
				continue
			}
			if err != nil {
				return applied, err
			}
			logger.Debug("sync.node.refreshed", "reason", m.Reason, "element_id", m.ElementID.String())
		}
		applied = append(applied, m)
	}
	return applied, nil
}

func (r *Reactor) unresolved(ctx context.Context, node *nodes.Node, err error) {
	if err == nil {
		err = interfaces.ErrContentEntityNotFound
	}
	logging.WithNavigationContext(r.logger.WithContext(ctx), node.NavigationID.String(), node.Locale, node.ID.String()).
		Warn("sync.element.unresolved",
			"element_id", node.LinkedElementID.String(),
			"element_type", node.LinkedElementType,
			"error", err,
		)
}

// refreshMutation mirrors entity onto node. The name follows the entity
// title only while the node still carries the previous title. It reports
// false when nothing would change.
func refreshMutation(node *nodes.Node, entity interfaces.ContentEntity, previous *interfaces.ContentEntity, reason string) (Mutation, bool) {
	m := Mutation{
		Kind:         MutationRefresh,
		NodeID:       node.ID,
		NavigationID: node.NavigationID,
		Locale:       node.Locale,
		ElementID:    entity.ID,
		URL:          nodes.LinkedURL(entity.URI),
		Enabled:      entity.Enabled,
		Reason:       reason,
	}
	if previous != nil && node.Name == previous.Title && entity.Title != "" && entity.Title != node.Name {
		title := entity.Title
		m.Name = &title
	}
	if m.Name == nil && m.URL == node.URL && m.Enabled == node.Enabled {
		return Mutation{}, false
	}
	return m, true
}

func normalizeType(elementType string) string {
	return strings.ToLower(strings.TrimSpace(elementType))
}

func deleteMutation(node *nodes.Node, reason string) Mutation {
	m := Mutation{
		Kind:         MutationDelete,
		NodeID:       node.ID,
		NavigationID: node.NavigationID,
		Locale:       node.Locale,
		Reason:       reason,
	}
	if node.LinkedElementID != nil {
		m.ElementID = *node.LinkedElementID
	}
	return m
}
