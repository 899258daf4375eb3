package nodescmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-navtree/internal/navigations"
	"github.com/goliatone/go-navtree/internal/nodes"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

var (
	ErrMoveNotAllowed   = errors.New("nodes command: move not allowed at this level")
	ErrDeleteNotAllowed = errors.New("nodes command: delete not allowed at this level")
	ErrDepthExceeded    = errors.New("nodes command: navigation depth exceeded")
	ErrSourceNotAllowed = errors.New("nodes command: element source not allowed")
)

// SettingsLookup loads the navigation that owns a node.
type SettingsLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*navigations.Navigation, error)
}

// NodeReader is the read side of the node service the policy needs.
type NodeReader interface {
	Get(ctx context.Context, id uuid.UUID) (*nodes.Node, error)
	Level(ctx context.Context, id uuid.UUID) (int, error)
	List(ctx context.Context, navigationID uuid.UUID, locale string) ([]*nodes.Node, error)
}

// Policy applies the per navigation level floors and depth limit.
type Policy struct {
	navigations SettingsLookup
	nodes       NodeReader
}

// NewPolicy builds a policy. A nil lookup disables every check.
func NewPolicy(navs SettingsLookup, reader NodeReader) *Policy {
	return &Policy{navigations: navs, nodes: reader}
}

func (p *Policy) settings(ctx context.Context, navigationID uuid.UUID) (navigations.Settings, bool, error) {
	if p == nil || p.navigations == nil {
		return navigations.Settings{}, false, nil
	}
	nav, err := p.navigations.Get(ctx, navigationID)
	if err != nil {
		return navigations.Settings{}, false, err
	}
	return nav.Settings, true, nil
}

// childLevel is the level a node takes under parent; nil means root.
func (p *Policy) childLevel(ctx context.Context, parent *uuid.UUID) (int, error) {
	if parent == nil || *parent == uuid.Nil {
		return 1, nil
	}
	level, err := p.nodes.Level(ctx, *parent)
	if err != nil {
		return 0, err
	}
	return level + 1, nil
}

// CheckCreate rejects nodes below MaxLevels or linked to a disallowed source.
func (p *Policy) CheckCreate(ctx context.Context, msg CreateNodeCommand) error {
	settings, ok, err := p.settings(ctx, msg.NavigationID)
	if err != nil || !ok {
		return err
	}
	if msg.LinkedElementID != nil && !settings.AllowsSource(msg.LinkedElementType) {
		return denied(ErrSourceNotAllowed, goerrors.CategoryValidation, "NODE_SOURCE_NOT_ALLOWED", map[string]any{
			"element_type": msg.LinkedElementType,
		})
	}
	if msg.Admin {
		return nil
	}
	level, err := p.childLevel(ctx, msg.ParentID)
	if err != nil {
		return err
	}
	if !settings.AllowsDepth(level) {
		return denied(ErrDepthExceeded, goerrors.CategoryValidation, "NODE_DEPTH_EXCEEDED", map[string]any{
			"level":      level,
			"max_levels": settings.MaxLevels,
		})
	}
	return nil
}

// CheckMove enforces the move floor on the current level and the depth
// limit on the deepest level the moved subtree reaches.
func (p *Policy) CheckMove(ctx context.Context, msg MoveNodeCommand) error {
	if p == nil || p.navigations == nil || msg.Admin {
		return nil
	}
	node, err := p.nodes.Get(ctx, msg.NodeID)
	if err != nil {
		return err
	}
	settings, _, err := p.settings(ctx, node.NavigationID)
	if err != nil {
		return err
	}
	level, err := p.nodes.Level(ctx, node.ID)
	if err != nil {
		return err
	}
	if !settings.AllowsMove(level, false) {
		return denied(ErrMoveNotAllowed, goerrors.CategoryAuthz, "NODE_MOVE_NOT_ALLOWED", map[string]any{
			"level": level,
			"floor": settings.CanMoveFromLevel,
		})
	}

	target, err := p.destinationLevel(ctx, msg)
	if err != nil {
		return err
	}
	height := 1
	if settings.MaxLevels > 0 {
		if height, err = p.subtreeHeight(ctx, node); err != nil {
			return err
		}
	}
	if deepest := target + height - 1; !settings.AllowsDepth(deepest) {
		return denied(ErrDepthExceeded, goerrors.CategoryValidation, "NODE_DEPTH_EXCEEDED", map[string]any{
			"level":      deepest,
			"max_levels": settings.MaxLevels,
		})
	}
	return nil
}

// subtreeHeight counts the levels spanned by node and its descendants.
func (p *Policy) subtreeHeight(ctx context.Context, node *nodes.Node) (int, error) {
	flat, err := p.nodes.List(ctx, node.NavigationID, node.Locale)
	if err != nil {
		return 0, err
	}
	children := make(map[uuid.UUID][]uuid.UUID, len(flat))
	for _, n := range flat {
		if !n.IsRoot() {
			children[*n.ParentID] = append(children[*n.ParentID], n.ID)
		}
	}
	height := 0
	level := []uuid.UUID{node.ID}
	for len(level) > 0 && height <= len(flat) {
		height++
		var next []uuid.UUID
		for _, id := range level {
			next = append(next, children[id]...)
		}
		level = next
	}
	return height, nil
}

func (p *Policy) destinationLevel(ctx context.Context, msg MoveNodeCommand) (int, error) {
	if msg.TargetID == nil {
		return p.childLevel(ctx, msg.ParentID)
	}
	if msg.Position == nodes.PositionChild {
		return p.childLevel(ctx, msg.TargetID)
	}
	return p.nodes.Level(ctx, *msg.TargetID)
}

// CheckDelete enforces the delete floor.
func (p *Policy) CheckDelete(ctx context.Context, msg DeleteNodeCommand) error {
	if p == nil || p.navigations == nil || msg.Admin {
		return nil
	}
	node, err := p.nodes.Get(ctx, msg.NodeID)
	if err != nil {
		return err
	}
	settings, _, err := p.settings(ctx, node.NavigationID)
	if err != nil {
		return err
	}
	level, err := p.nodes.Level(ctx, node.ID)
	if err != nil {
		return err
	}
	if !settings.AllowsDelete(level, false) {
		return denied(ErrDeleteNotAllowed, goerrors.CategoryAuthz, "NODE_DELETE_NOT_ALLOWED", map[string]any{
			"level": level,
			"floor": settings.CanDeleteFromLevel,
		})
	}
	return nil
}

func denied(sentinel error, category goerrors.Category, code string, metadata map[string]any) error {
	return goerrors.Wrap(sentinel, category, "node command rejected").
		WithTextCode(code).
		WithMetadata(metadata)
}
