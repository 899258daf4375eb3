package migrations

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-navtree/internal/navigations"
	"github.com/goliatone/go-navtree/internal/nodes"
	"github.com/goliatone/go-navtree/pkg/testsupport"
)

func TestDefaultRegistryCreatesTables(t *testing.T) {
	ctx := context.Background()
	db, err := testsupport.NewBunSQLite(ctx, "migrations_default")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	registry := Default()
	for i := 0; i < 2; i++ {
		if err := registry.Migrate(ctx, db); err != nil {
			t.Fatalf("migrate run %d: %v", i+1, err)
		}
	}

	nav := &navigations.Navigation{ID: uuid.New(), Name: "Main", Handle: "main"}
	if _, err := db.NewInsert().Model(nav).Exec(ctx); err != nil {
		t.Fatalf("insert navigation: %v", err)
	}
	node := &nodes.Node{ID: uuid.New(), NavigationID: nav.ID, Name: "Home", URL: "/", Locale: "en", Enabled: true}
	if _, err := db.NewInsert().Model(node).Exec(ctx); err != nil {
		t.Fatalf("insert node: %v", err)
	}
}

func TestRegistryRejectsDuplicateAndEmptySteps(t *testing.T) {
	registry := NewRegistry()
	noop := func(context.Context, bun.IDB) error { return nil }
	if err := registry.Register("one", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("one", noop); err == nil {
		t.Fatalf("expected duplicate step error")
	}
	if err := registry.Register(" ", noop); !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("expected ErrInvalidStep, got %v", err)
	}
	if names := registry.Names(); len(names) != 1 || names[0] != "one" {
		t.Fatalf("unexpected names %v", names)
	}
}
