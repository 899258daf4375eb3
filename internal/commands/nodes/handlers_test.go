package nodescmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-navtree/internal/commands"
	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/internal/navigations"
	"github.com/goliatone/go-navtree/internal/nodes"
)

type fixture struct {
	navs    navigations.Service
	nodes   nodes.Service
	policy  *Policy
	nav     *navigations.Navigation
	created map[string]*nodes.Node
}

// newFixture seeds Top > Middle > Bottom.
func newFixture(t *testing.T, settings navigations.Settings) *fixture {
	t.Helper()
	ctx := context.Background()
	navs := navigations.NewService(navigations.NewMemoryNavigationRepository())
	svc := nodes.NewService(nodes.NewMemoryNodeRepository(),
		nodes.WithDefaultLocale("en"),
		nodes.WithNavigationLookup(navs),
	)
	nav, err := navs.Create(ctx, navigations.CreateNavigationInput{Name: "Main", Settings: settings})
	if err != nil {
		t.Fatalf("create navigation: %v", err)
	}
	f := &fixture{
		navs:    navs,
		nodes:   svc,
		policy:  NewPolicy(navs, svc),
		nav:     nav,
		created: make(map[string]*nodes.Node),
	}
	var parent *uuid.UUID
	for _, name := range []string{"Top", "Middle", "Bottom"} {
		node, err := svc.Create(ctx, nodes.CreateNodeInput{NavigationID: nav.ID, ParentID: parent, Name: name, URL: "/" + name})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		f.created[name] = node
		parent = &node.ID
	}
	return f
}

func TestCreateNodeHandlerReturnsResult(t *testing.T) {
	f := newFixture(t, navigations.Settings{})
	handler := NewCreateNodeHandler(f.nodes, f.policy, commands.CommandLogger(nil, "nodes"))

	var created nodes.Node
	err := handler.Execute(context.Background(), CreateNodeCommand{
		NavigationID: f.nav.ID,
		Name:         "Contact",
		URL:          "/contact",
		Result:       &created,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if created.ID == uuid.Nil || created.Name != "Contact" || created.Order != 1 {
		t.Fatalf("unexpected created node %+v", created)
	}
}

func TestCreateNodeHandlerValidationError(t *testing.T) {
	f := newFixture(t, navigations.Settings{})
	handler := NewCreateNodeHandler(f.nodes, f.policy, logging.NoOp())

	err := handler.Execute(context.Background(), CreateNodeCommand{Name: "Orphan"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}

	linked := uuid.New()
	err = handler.Execute(context.Background(), CreateNodeCommand{NavigationID: f.nav.ID, LinkedElementID: &linked})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected element type required, got %v", err)
	}
}

func TestCreateNodeHandlerEnforcesDepth(t *testing.T) {
	f := newFixture(t, navigations.Settings{MaxLevels: 3})
	handler := NewCreateNodeHandler(f.nodes, f.policy, logging.NoOp())
	parent := f.created["Bottom"].ID

	err := handler.Execute(context.Background(), CreateNodeCommand{NavigationID: f.nav.ID, ParentID: &parent, Name: "Deep"})
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
	err = handler.Execute(context.Background(), CreateNodeCommand{NavigationID: f.nav.ID, ParentID: &parent, Name: "Deep", Admin: true})
	if err != nil {
		t.Fatalf("expected admin to bypass depth, got %v", err)
	}
}

func TestCreateNodeHandlerEnforcesEntrySources(t *testing.T) {
	f := newFixture(t, navigations.Settings{EntrySources: []string{"page"}})
	handler := NewCreateNodeHandler(f.nodes, f.policy, logging.NoOp())
	linked := uuid.New()

	err := handler.Execute(context.Background(), CreateNodeCommand{
		NavigationID:      f.nav.ID,
		LinkedElementID:   &linked,
		LinkedElementType: "entry",
		Admin:             true,
	})
	if !errors.Is(err, ErrSourceNotAllowed) {
		t.Fatalf("expected ErrSourceNotAllowed, got %v", err)
	}
}

func TestMoveNodeHandlerFloor(t *testing.T) {
	f := newFixture(t, navigations.Settings{CanMoveFromLevel: 2})
	handler := NewMoveNodeHandler(f.nodes, f.policy, logging.NoOp())
	top := f.created["Top"].ID

	err := handler.Execute(context.Background(), MoveNodeCommand{NodeID: top})
	if !errors.Is(err, ErrMoveNotAllowed) {
		t.Fatalf("expected ErrMoveNotAllowed for level 1, got %v", err)
	}

	bottom := f.created["Bottom"].ID
	if err := handler.Execute(context.Background(), MoveNodeCommand{NodeID: bottom}); err != nil {
		t.Fatalf("expected level 3 move allowed, got %v", err)
	}
	moved, err := f.nodes.Get(context.Background(), bottom)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if moved.ParentID != nil || moved.Order != 0 {
		t.Fatalf("expected bottom moved first at root, got parent=%v order=%d", moved.ParentID, moved.Order)
	}

	if err := handler.Execute(context.Background(), MoveNodeCommand{NodeID: top, Admin: true, TargetID: &bottom, Position: nodes.PositionAfter}); err != nil {
		t.Fatalf("expected admin move allowed, got %v", err)
	}
}

func TestMoveNodeHandlerRejectsDestinationBeyondDepth(t *testing.T) {
	f := newFixture(t, navigations.Settings{MaxLevels: 3})
	handler := NewMoveNodeHandler(f.nodes, f.policy, logging.NoOp())
	ctx := context.Background()

	loose, err := f.nodes.Create(ctx, nodes.CreateNodeInput{NavigationID: f.nav.ID, Name: "Loose", URL: "/loose"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	bottom := f.created["Bottom"].ID
	err = handler.Execute(ctx, MoveNodeCommand{NodeID: loose.ID, TargetID: &bottom, Position: nodes.PositionChild})
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
}

func TestMoveNodeHandlerCountsSubtreeDepth(t *testing.T) {
	f := newFixture(t, navigations.Settings{MaxLevels: 3})
	handler := NewMoveNodeHandler(f.nodes, f.policy, logging.NoOp())
	ctx := context.Background()

	second, err := f.nodes.Create(ctx, nodes.CreateNodeInput{NavigationID: f.nav.ID, Name: "Second", URL: "/second"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	top := f.created["Top"].ID
	err = handler.Execute(ctx, MoveNodeCommand{NodeID: top, TargetID: &second.ID, Position: nodes.PositionChild})
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded for a three level subtree, got %v", err)
	}
	if level, err := f.nodes.Level(ctx, f.created["Bottom"].ID); err != nil || level != 3 {
		t.Fatalf("expected tree unchanged, bottom level=%d err=%v", level, err)
	}

	middle := f.created["Middle"].ID
	if err := handler.Execute(ctx, MoveNodeCommand{NodeID: middle, TargetID: &second.ID, Position: nodes.PositionChild}); err != nil {
		t.Fatalf("expected two level subtree to fit, got %v", err)
	}
	if level, err := f.nodes.Level(ctx, f.created["Bottom"].ID); err != nil || level != 3 {
		t.Fatalf("expected bottom at level 3, got %d (%v)", level, err)
	}
}

func TestMoveNodeCommandValidatesPosition(t *testing.T) {
	target := uuid.New()
	cases := []MoveNodeCommand{
		{},
		{NodeID: uuid.New(), TargetID: &target},
		{NodeID: uuid.New(), TargetID: &target, Position: "inside"},
		{NodeID: uuid.New(), Position: nodes.PositionChild},
	}
	for i, msg := range cases {
		if err := msg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if err := (MoveNodeCommand{NodeID: uuid.New(), TargetID: &target, Position: nodes.PositionBefore}).Validate(); err != nil {
		t.Fatalf("expected valid placement, got %v", err)
	}
}

func TestDeleteNodeHandlerFloor(t *testing.T) {
	f := newFixture(t, navigations.Settings{CanDeleteFromLevel: 3})
	handler := NewDeleteNodeHandler(f.nodes, f.policy, logging.NoOp())
	ctx := context.Background()

	err := handler.Execute(ctx, DeleteNodeCommand{NodeID: f.created["Middle"].ID})
	if !errors.Is(err, ErrDeleteNotAllowed) {
		t.Fatalf("expected ErrDeleteNotAllowed, got %v", err)
	}
	if err := handler.Execute(ctx, DeleteNodeCommand{NodeID: f.created["Middle"].ID, Admin: true}); err != nil {
		t.Fatalf("expected admin delete, got %v", err)
	}
	for _, name := range []string{"Middle", "Bottom"} {
		if _, err := f.nodes.Get(ctx, f.created[name].ID); !errors.Is(err, nodes.ErrNodeNotFound) {
			t.Fatalf("expected %s removed, got %v", name, err)
		}
	}
	if err := handler.Execute(ctx, DeleteNodeCommand{NodeID: uuid.New()}); err != nil {
		t.Fatalf("expected missing node delete to be a no-op, got %v", err)
	}
}

func TestRenumberNavigationHandler(t *testing.T) {
	f := newFixture(t, navigations.Settings{})
	handler := NewRenumberNavigationHandler(f.nodes, logging.NoOp())

	if err := handler.Execute(context.Background(), RenumberNavigationCommand{NavigationID: f.nav.ID, Locale: "en"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := handler.Execute(context.Background(), RenumberNavigationCommand{}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
