package tree_test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/goliatone/go-navtree/internal/tree"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/google/uuid"
)

var navID = uuid.MustParse("6a1d2f4e-0000-4000-8000-000000000001")

func nodeID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-4000-8000-%012d", n))
}

func node(n, parent, order int, name, url string) *nodes.Node {
	out := &nodes.Node{
		ID:           nodeID(n),
		NavigationID: navID,
		Order:        order,
		Name:         name,
		URL:          url,
		Enabled:      true,
		Locale:       "en",
	}
	if parent != 0 {
		pid := nodeID(parent)
		out.ParentID = &pid
	}
	return out
}

// threeLevels returns About > Team > Alice, plus a root level Contact.
func threeLevels() []*nodes.Node {
	return []*nodes.Node{
		node(1, 0, 0, "About", "{siteUrl}about"),
		node(4, 0, 1, "Contact", "{siteUrl}contact"),
		node(2, 1, 0, "Team", "{siteUrl}about/team"),
		node(3, 2, 0, "Alice", "{siteUrl}about/team/alice"),
	}
}

func names(list []tree.TreeNode) string {
	parts := make([]string, 0, len(list))
	for _, n := range list {
		parts = append(parts, n.Name)
	}
	return strings.Join(parts, ",")
}

func TestBuildNestsByParentAndOrder(t *testing.T) {
	flat := []*nodes.Node{
		node(2, 0, 1, "B", "/b"),
		node(3, 1, 0, "C", "/a/c"),
		node(1, 0, 0, "A", "/a"),
	}

	built := tree.Build(context.Background(), flat, tree.Options{})
	if got := names(built); got != "A,B" {
		t.Fatalf("expected roots A,B, got %s", got)
	}
	a := built[0]
	if a.Level != 1 || !a.HasChildren || names(a.Children) != "C" {
		t.Fatalf("unexpected A: level=%d hasChildren=%v children=%s", a.Level, a.HasChildren, names(a.Children))
	}
	if a.Children[0].Level != 2 {
		t.Fatalf("expected C at level 2, got %d", a.Children[0].Level)
	}
	if built[1].HasChildren || built[1].Children != nil {
		t.Fatalf("expected B to be a leaf")
	}
}

func TestBuildMaxLevelOmitsChildrenKey(t *testing.T) {
	built := tree.Build(context.Background(), threeLevels(), tree.Options{MaxLevel: 2})

	payload, err := json.Marshal(built)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 root nodes, got %d", len(decoded))
	}
	children, ok := decoded[0]["children"].([]any)
	if !ok || len(children) != 1 {
		t.Fatalf("expected About to carry one child, got %v", decoded[0]["children"])
	}
	team := children[0].(map[string]any)
	if team["name"] != "Team" || team["level"] != float64(2) {
		t.Fatalf("unexpected level 2 node: %v", team)
	}
	if _, present := team["children"]; present {
		t.Fatalf("expected level 2 node without children key, got %v", team["children"])
	}
	if _, present := decoded[1]["children"]; present {
		t.Fatalf("expected leaf without children key")
	}
}

func TestBuildMarksActivePathAndAncestors(t *testing.T) {
	opts := tree.Options{
		ActivePath: "/about/team/",
		SiteURL:    "https://example.com",
	}
	built := tree.Build(context.Background(), threeLevels(), opts)

	about := built[0]
	team := about.Children[0]
	alice := team.Children[0]
	if about.URL != "https://example.com/about" {
		t.Fatalf("expected substituted url, got %q", about.URL)
	}
	if about.RawURL != "{siteUrl}about" {
		t.Fatalf("expected raw url to be kept, got %q", about.RawURL)
	}
	if !about.Active || !about.HasActiveChild {
		t.Fatalf("expected About active with active child, got active=%v child=%v", about.Active, about.HasActiveChild)
	}
	if !team.Active || team.HasActiveChild {
		t.Fatalf("expected Team active without active child, got active=%v child=%v", team.Active, team.HasActiveChild)
	}
	if alice.Active {
		t.Fatalf("expected Alice inactive")
	}
	if built[1].Active || built[1].HasActiveChild {
		t.Fatalf("expected Contact untouched")
	}
}

func TestBuildIgnoreActiveChildsMatchesFullPathOnly(t *testing.T) {
	opts := tree.Options{
		ActivePath:         "/about/team#people",
		IgnoreActiveChilds: true,
	}
	built := tree.Build(context.Background(), threeLevels(), opts)

	about := built[0]
	if about.Active {
		t.Fatalf("expected About inactive when only the full path matches")
	}
	if !about.HasActiveChild {
		t.Fatalf("expected About to report its active child")
	}
	if !about.Children[0].Active {
		t.Fatalf("expected Team active")
	}
}

func TestBuildActiveChildBeyondMaxLevel(t *testing.T) {
	opts := tree.Options{ActivePath: "/about/team/alice", MaxLevel: 1, IgnoreActiveChilds: true}
	built := tree.Build(context.Background(), threeLevels(), opts)

	if built[0].Children != nil {
		t.Fatalf("expected children pruned at level 1")
	}
	if !built[0].HasActiveChild {
		t.Fatalf("expected pruned active descendant to be reported")
	}
}

func TestBuildActiveMatchingIgnoresOtherHosts(t *testing.T) {
	flat := []*nodes.Node{
		node(1, 0, 0, "External", "https://other.example.org/about"),
		node(2, 0, 1, "Home", "{siteUrl}"),
	}
	opts := tree.Options{ActivePath: "/about", SiteURL: "https://example.com/"}
	built := tree.Build(context.Background(), flat, opts)
	if built[0].Active {
		t.Fatalf("expected external url not to match")
	}
	if built[1].Active {
		t.Fatalf("expected site root not to match /about")
	}

	opts.ActivePath = "/"
	built = tree.Build(context.Background(), flat, opts)
	if !built[1].Active {
		t.Fatalf("expected site root active for /")
	}
}

func TestBuildHidesDisabledSubtrees(t *testing.T) {
	flat := threeLevels()
	flat[0].Enabled = false

	built := tree.Build(context.Background(), flat, tree.Options{})
	if got := names(built); got != "Contact" {
		t.Fatalf("expected disabled About subtree hidden, got %s", got)
	}
	for n := range tree.Walk(built) {
		if n.Name == "Team" || n.Name == "Alice" {
			t.Fatalf("expected descendants of disabled node hidden, found %s", n.Name)
		}
	}

	built = tree.Build(context.Background(), flat, tree.Options{OverrideStatus: true})
	if got := names(built); got != "About,Contact" {
		t.Fatalf("expected override to show About, got %s", got)
	}
	if built[0].Enabled {
		t.Fatalf("expected About to keep its disabled flag")
	}
}

func TestBuildStartFromID(t *testing.T) {
	start := nodeID(1)
	built := tree.Build(context.Background(), threeLevels(), tree.Options{StartFromID: &start})
	if got := names(built); got != "Team" {
		t.Fatalf("expected tree to start below About, got %s", got)
	}
	if built[0].Level != 1 {
		t.Fatalf("expected levels to restart at 1, got %d", built[0].Level)
	}

	missing := nodeID(99)
	if built := tree.Build(context.Background(), threeLevels(), tree.Options{StartFromID: &missing}); built != nil {
		t.Fatalf("expected empty tree for unknown start node, got %d nodes", len(built))
	}
}

func TestBuildSkipsCycles(t *testing.T) {
	flat := []*nodes.Node{
		node(1, 0, 0, "A", "/a"),
		node(2, 3, 0, "B", "/b"),
		node(3, 2, 0, "C", "/c"),
	}
	built := tree.Build(context.Background(), flat, tree.Options{})
	if got := names(built); got != "A" {
		t.Fatalf("expected unreachable cycle to be left out, got %s", got)
	}

	start := nodeID(2)
	built = tree.Build(context.Background(), flat, tree.Options{StartFromID: &start})
	count := 0
	for range tree.Walk(built) {
		count++
	}
	if count != 1 {
		t.Fatalf("expected cycle to stop after one node, walked %d", count)
	}
}

func TestResolveURL(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		url  string
		opts tree.Options
		want string
	}{
		{"site placeholder", "{siteUrl}about", tree.Options{SiteURL: "https://example.com"}, "https://example.com/about"},
		{"empty site", "{siteUrl}about", tree.Options{}, "/about"},
		{"home", nodes.LinkedURL("__home__"), tree.Options{SiteURL: "https://example.com/"}, "https://example.com/"},
		{"trailing slash", "{siteUrl}about?x=1", tree.Options{SiteURL: "https://example.com", TrailingSlash: true}, "https://example.com/about/?x=1"},
		{"manual url untouched", "https://other.example.org/x", tree.Options{TrailingSlash: true}, "https://other.example.org/x"},
		{"route without resolver", "route:page?slug=company", tree.Options{}, "route:page?slug=company"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tree.ResolveURL(ctx, &nodes.Node{URL: tc.url}, tc.opts)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestURLKitResolverBuildsLocalizedRoutes(t *testing.T) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "frontend",
				BaseURL: "https://example.com",
				Paths: map[string]string{
					"page": "/pages/:slug",
				},
				Groups: []urlkit.GroupConfig{
					{
						Name: "es",
						Path: "/es",
						Paths: map[string]string{
							"page": "/paginas/:slug",
						},
					},
				},
			},
		},
	})
	resolver := tree.NewURLKitResolver(tree.URLKitResolverOptions{
		Manager:      manager,
		DefaultGroup: "frontend",
		LocaleGroups: map[string]string{"ES": "frontend.es"},
	})

	flat := []*nodes.Node{node(1, 0, 0, "Company", "route:page?slug=company")}
	opts := tree.Options{Resolver: resolver, SiteURL: "https://example.com", ActivePath: "/pages/company"}

	built := tree.Build(context.Background(), flat, opts)
	if built[0].URL != "https://example.com/pages/company" {
		t.Fatalf("expected urlkit url, got %q", built[0].URL)
	}
	if !built[0].Active {
		t.Fatalf("expected resolved route url to match the active path")
	}

	opts.Locale = "es"
	built = tree.Build(context.Background(), flat, opts)
	if built[0].URL != "https://example.com/es/paginas/company" {
		t.Fatalf("expected localized urlkit url, got %q", built[0].URL)
	}

	flat[0].URL = "route:missing"
	built = tree.Build(context.Background(), flat, opts)
	if built[0].URL != "route:missing" {
		t.Fatalf("expected unknown route to fall back to raw url, got %q", built[0].URL)
	}
}

func TestActiveNodeIDForLevel(t *testing.T) {
	ctx := context.Background()
	flat := threeLevels()
	opts := tree.Options{SiteURL: "https://example.com"}

	cases := []struct {
		level int
		want  uuid.UUID
		ok    bool
	}{
		{1, nodeID(1), true},
		{2, nodeID(2), true},
		{3, nodeID(3), true},
		{4, uuid.Nil, false},
		{0, uuid.Nil, false},
	}
	for _, tc := range cases {
		got, ok := tree.ActiveNodeIDForLevel(ctx, flat, "https://example.com/about/team/alice?x=1", tc.level, opts)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("level %d: expected (%s,%v), got (%s,%v)", tc.level, tc.want, tc.ok, got, ok)
		}
	}

	if _, ok := tree.ActiveNodeIDForLevel(ctx, flat, "/unknown/path", 1, opts); ok {
		t.Fatalf("expected no node for unknown path")
	}
}

func TestParentOptions(t *testing.T) {
	flat := threeLevels()
	flat[3].Enabled = false

	labels := func(opts []tree.ParentOption) []string {
		out := make([]string, 0, len(opts))
		for _, opt := range opts {
			out = append(out, opt.Label)
		}
		return out
	}

	all := tree.ParentOptions(flat, 0, nil)
	want := []string{tree.RootOptionLabel, "About", "    Team", "        Alice", "Contact"}
	if got := labels(all); !slices.Equal(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if all[0].ID != uuid.Nil {
		t.Fatalf("expected root option first")
	}

	bounded := tree.ParentOptions(flat, 2, nil)
	want = []string{tree.RootOptionLabel, "About", "Contact"}
	if got := labels(bounded); !slices.Equal(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}

	exclude := nodeID(2)
	excluded := tree.ParentOptions(flat, 0, &exclude)
	want = []string{tree.RootOptionLabel, "About", "Contact"}
	if got := labels(excluded); !slices.Equal(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLevel(t *testing.T) {
	flat := threeLevels()
	for n, want := range map[int]int{1: 1, 2: 2, 3: 3, 4: 1, 99: 0} {
		if got := tree.Level(flat, nodeID(n)); got != want {
			t.Fatalf("node %d: expected level %d, got %d", n, want, got)
		}
	}
}
