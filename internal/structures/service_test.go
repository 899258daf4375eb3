package structures_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-navtree/internal/navigations"
	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/goliatone/go-navtree/internal/structures"
	"github.com/goliatone/go-navtree/internal/tree"
)

type fixture struct {
	navs  navigations.Service
	nodes nodes.Service
	svc   structures.Service
	nav   *navigations.Navigation
	byKey map[string]*nodes.Node
}

// newFixture seeds "main" with About > Team > Alice and a root Contact.
func newFixture(t *testing.T, settings navigations.Settings) *fixture {
	t.Helper()
	ctx := context.Background()
	navs := navigations.NewService(navigations.NewMemoryNavigationRepository())
	nodeSvc := nodes.NewService(nodes.NewMemoryNodeRepository(),
		nodes.WithDefaultLocale("en"),
		nodes.WithNavigationLookup(navs),
	)
	nav, err := navs.Create(ctx, navigations.CreateNavigationInput{Name: "Main", Settings: settings})
	if err != nil {
		t.Fatalf("create navigation: %v", err)
	}

	f := &fixture{
		navs:  navs,
		nodes: nodeSvc,
		nav:   nav,
		byKey: make(map[string]*nodes.Node),
		svc: structures.NewService(navs, nodeSvc,
			structures.WithDefaultLocale("en"),
			structures.WithSiteURL("https://example.com"),
		),
	}
	add := func(name, url, parent string) {
		input := nodes.CreateNodeInput{NavigationID: nav.ID, Name: name, URL: url}
		if parent != "" {
			input.ParentID = &f.byKey[parent].ID
		}
		node, err := nodeSvc.Create(ctx, input)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		f.byKey[name] = node
	}
	add("About", "{siteUrl}about", "")
	add("Contact", "{siteUrl}contact", "")
	add("Team", "{siteUrl}about/team", "About")
	add("Alice", "{siteUrl}about/team/alice", "Team")
	return f
}

func TestGetNavRawMaxLevelTwo(t *testing.T) {
	f := newFixture(t, navigations.Settings{})

	params, err := structures.ParseParams(map[string]any{"maxLevel": 2})
	if err != nil {
		t.Fatalf("parse params: %v", err)
	}
	built, err := f.svc.GetNavRaw(context.Background(), "main", params, "")
	if err != nil {
		t.Fatalf("get nav raw: %v", err)
	}

	levels := map[int]int{}
	for node := range tree.Walk(built) {
		levels[node.Level]++
		if node.Level == 2 && node.Children != nil {
			t.Fatalf("expected level 2 node %s without children", node.Name)
		}
	}
	if levels[1] != 2 || levels[2] != 1 || levels[3] != 0 {
		t.Fatalf("unexpected level counts %v", levels)
	}
}

func TestGetNavUsesInjectedActivePath(t *testing.T) {
	f := newFixture(t, navigations.Settings{})
	ctx := structures.ContextWithActivePath(context.Background(), "/about/team")

	params, err := structures.ParseParams(map[string]any{
		"classActive":  "is-active",
		"classLevel2":  "sub",
		"unknownParam": 1,
	})
	if err != nil {
		t.Fatalf("parse params: %v", err)
	}
	structure, err := f.svc.GetNav(ctx, "main", params, "en")
	if err != nil {
		t.Fatalf("get nav: %v", err)
	}
	if structure.Presentation["classActive"] != "is-active" || structure.Presentation["classLevel2"] != "sub" {
		t.Fatalf("expected presentation params carried, got %v", structure.Presentation)
	}
	if _, ok := structure.Presentation["unknownParam"]; ok {
		t.Fatalf("expected unknown params dropped")
	}
	about := structure.Nodes[0]
	if !about.Active || !about.HasActiveChild || about.URL != "https://example.com/about" {
		t.Fatalf("unexpected About node: %+v", about)
	}
}

func TestGetNavUnknownHandle(t *testing.T) {
	f := newFixture(t, navigations.Settings{})
	if _, err := f.svc.GetNavRaw(context.Background(), "missing", structures.Params{}, ""); !errors.Is(err, navigations.ErrNavigationNotFound) {
		t.Fatalf("expected ErrNavigationNotFound, got %v", err)
	}
}

func TestGetActiveNodeIDForLevel(t *testing.T) {
	f := newFixture(t, navigations.Settings{})
	ctx := context.Background()

	id, ok, err := f.svc.GetActiveNodeIDForLevel(ctx, "main", 2, "", "/about/team/alice")
	if err != nil {
		t.Fatalf("active node: %v", err)
	}
	if !ok || id != f.byKey["Team"].ID {
		t.Fatalf("expected Team for level 2, got %s ok=%v", id, ok)
	}

	_, ok, err = f.svc.GetActiveNodeIDForLevel(ctx, "main", 1, "", "/nowhere")
	if err != nil || ok {
		t.Fatalf("expected no match, ok=%v err=%v", ok, err)
	}
}

func TestParentOptionsHonoursMaxLevels(t *testing.T) {
	f := newFixture(t, navigations.Settings{MaxLevels: 2})

	options, err := f.svc.ParentOptions(context.Background(), "main", "", nil)
	if err != nil {
		t.Fatalf("parent options: %v", err)
	}
	var ids []uuid.UUID
	for _, opt := range options {
		ids = append(ids, opt.ID)
	}
	want := []uuid.UUID{uuid.Nil, f.byKey["About"].ID, f.byKey["Contact"].ID}
	if len(ids) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("option %d: expected %s, got %s", i, want[i], ids[i])
		}
	}
}

func TestParseParams(t *testing.T) {
	start := uuid.New()
	params, err := structures.ParseParams(map[string]any{
		"maxLevel":           "3",
		"overrideStatus":     "true",
		"ignoreActiveChilds": true,
		"startFromId":        start.String(),
		"excludeUl":          true,
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if params.MaxLevel != 3 || !params.OverrideStatus || !params.IgnoreActiveChilds {
		t.Fatalf("unexpected params %+v", params)
	}
	if params.StartFromID == nil || *params.StartFromID != start {
		t.Fatalf("expected start id %s", start)
	}
	if params.Presentation["excludeUl"] != true {
		t.Fatalf("expected excludeUl carried")
	}

	for _, raw := range []map[string]any{
		{"maxLevel": "deep"},
		{"maxLevel": -1},
		{"overrideStatus": "maybe"},
		{"startFromId": "not-a-uuid"},
	} {
		if _, err := structures.ParseParams(raw); !errors.Is(err, structures.ErrParamInvalid) {
			t.Fatalf("expected ErrParamInvalid for %v, got %v", raw, err)
		}
	}
}
