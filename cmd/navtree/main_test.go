package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/goliatone/go-navtree/cmd/navtree/internal/bootstrap"
	"github.com/goliatone/go-navtree/internal/identity"
	"github.com/goliatone/go-navtree/pkg/testsupport"
	"github.com/google/uuid"
)

const seedPath = "testdata/main.yaml"

type treeNode struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Level    int        `json:"level"`
	Active   bool       `json:"active"`
	Children []treeNode `json:"children"`
}

// useSharedModule makes every run reuse one in-memory module.
func useSharedModule(t *testing.T) *bootstrap.Module {
	t.Helper()
	module, err := bootstrap.BuildModule(bootstrap.Options{
		Driver:        "memory",
		DefaultLocale: "en",
		LogProvider:   "console",
		LogLevel:      "error",
	})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}

	originalBuilder, originalStdout := moduleBuilder, stdout
	t.Cleanup(func() {
		moduleBuilder = originalBuilder
		stdout = originalStdout
	})
	moduleBuilder = func(bootstrap.Options) (*bootstrap.Module, error) {
		return module, nil
	}
	return module
}

func runCapture(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	stdout = &buf
	if err := run(args); err != nil {
		t.Fatalf("run %v: %v", args, err)
	}
	return buf.String()
}

func TestSeedFixtureShape(t *testing.T) {
	var doc seedFile
	if err := testsupport.LoadYAMLFixture(seedPath, &doc); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if doc.Handle != "main" || len(doc.Nodes) != 2 || len(doc.Nodes[1].Children) != 1 {
		t.Fatalf("unexpected fixture %+v", doc)
	}
	if doc.Settings["maxLevels"] != 3 {
		t.Fatalf("expected maxLevels setting, got %v", doc.Settings)
	}
}

func readTree(t *testing.T, args ...string) []treeNode {
	t.Helper()
	out := runCapture(t, append([]string{"tree", "-env", "missing.env", "-handle", "main"}, args...)...)
	var nodes []treeNode
	if err := json.Unmarshal([]byte(out), &nodes); err != nil {
		t.Fatalf("decode tree output %q: %v", out, err)
	}
	return nodes
}

func TestRunRequiresCommand(t *testing.T) {
	if err := run(nil); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run([]string{"export"}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error for unknown command, got %v", err)
	}
}

func TestRunSeedAndTree(t *testing.T) {
	useSharedModule(t)

	out := runCapture(t, "seed", "-env", "missing.env", "-file", seedPath)
	fields := strings.Fields(out)
	if len(fields) != 3 || fields[1] != "main" || fields[2] != "3" {
		t.Fatalf("unexpected seed output %q", out)
	}

	nodes := readTree(t, "-path", "/about/team")
	if len(nodes) != 2 || nodes[0].Name != "Home" || nodes[1].Name != "About" {
		t.Fatalf("unexpected roots %+v", nodes)
	}
	home := identity.NodeUUID(identity.NavigationUUID("main"), "en", "0-Home")
	if nodes[0].ID != home {
		t.Fatalf("expected seeded id %s, got %s", home, nodes[0].ID)
	}
	about := nodes[1]
	if len(about.Children) != 1 || about.Children[0].Name != "Team" || about.Children[0].Level != 2 {
		t.Fatalf("unexpected About children %+v", about.Children)
	}
	if !about.Children[0].Active {
		t.Fatalf("expected Team active for /about/team")
	}

	limited := readTree(t, "-max-level", "1")
	if len(limited[1].Children) != 0 {
		t.Fatalf("expected children trimmed at max level 1")
	}
}

func TestRunMoveAndDelete(t *testing.T) {
	useSharedModule(t)
	runCapture(t, "seed", "-env", "missing.env", "-file", seedPath)

	nodes := readTree(t)
	home, about := nodes[0], nodes[1]
	team := about.Children[0]

	runCapture(t, "move", "-env", "missing.env", "-id", team.ID.String(), "-target", home.ID.String(), "-position", "before")
	nodes = readTree(t)
	if len(nodes) != 3 || nodes[0].ID != team.ID || nodes[1].ID != home.ID || nodes[2].ID != about.ID {
		t.Fatalf("expected Team placed before Home, got %+v", nodes)
	}

	runCapture(t, "move", "-env", "missing.env", "-id", team.ID.String(), "-parent", about.ID.String())
	nodes = readTree(t)
	if len(nodes) != 2 || len(nodes[1].Children) != 1 || nodes[1].Children[0].ID != team.ID {
		t.Fatalf("expected Team back under About, got %+v", nodes)
	}

	runCapture(t, "delete", "-env", "missing.env", "-id", about.ID.String(), "-admin")
	nodes = readTree(t)
	if len(nodes) != 1 || nodes[0].ID != home.ID {
		t.Fatalf("expected only Home left, got %+v", nodes)
	}
}

func TestRunMoveRejectsInvalidIDs(t *testing.T) {
	useSharedModule(t)
	if err := run([]string{"move", "-id", "nope"}); err == nil || !strings.Contains(err.Error(), "invalid -id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
	if err := run([]string{"delete", "-env", "missing.env", "-id", uuid.NewString()}); err != nil {
		t.Fatalf("expected delete of a missing node to be a no-op, got %v", err)
	}
}

func TestRunSeedRequiresFile(t *testing.T) {
	useSharedModule(t)
	if err := run([]string{"seed"}); err == nil || !strings.Contains(err.Error(), "-file is required") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestRunTreeUnknownHandle(t *testing.T) {
	module := useSharedModule(t)
	if _, err := module.Module.Navigations().List(context.Background()); err != nil {
		t.Fatalf("list navigations: %v", err)
	}
	if err := run([]string{"tree", "-env", "missing.env", "-handle", "missing"}); err == nil {
		t.Fatalf("expected unknown handle error")
	}
}
