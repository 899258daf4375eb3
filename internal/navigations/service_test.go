package navigations_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-navtree/internal/identity"
	"github.com/goliatone/go-navtree/internal/navigations"
)

type recordingCleaner struct {
	calls []uuid.UUID
	count int
}

func (c *recordingCleaner) DeleteByNavigation(_ context.Context, id uuid.UUID) (int, error) {
	c.calls = append(c.calls, id)
	return c.count, nil
}

func newService(opts ...navigations.ServiceOption) navigations.Service {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	base := []navigations.ServiceOption{
		navigations.WithClock(func() time.Time { return fixed }),
	}
	return navigations.NewService(navigations.NewMemoryNavigationRepository(), append(base, opts...)...)
}

func TestServiceCreateDerivesHandleAndID(t *testing.T) {
	svc := newService()

	nav, err := svc.Create(context.Background(), navigations.CreateNavigationInput{
		Name:     "  Main Navigation ",
		Settings: navigations.Settings{MaxLevels: 3},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if nav.Name != "Main Navigation" {
		t.Fatalf("expected trimmed name, got %q", nav.Name)
	}
	if nav.Handle != "main-navigation" {
		t.Fatalf("expected handle main-navigation, got %q", nav.Handle)
	}
	if nav.ID != identity.NavigationUUID("main-navigation") {
		t.Fatalf("expected deterministic id, got %s", nav.ID)
	}
	if nav.Settings.MaxLevels != 3 {
		t.Fatalf("expected settings to persist, got %+v", nav.Settings)
	}

	byHandle, err := svc.GetByHandle(context.Background(), "Main Navigation")
	if err != nil {
		t.Fatalf("get by handle: %v", err)
	}
	if byHandle.ID != nav.ID {
		t.Fatalf("expected handle lookup to normalise input")
	}
}

func TestServiceCreateRejectsDuplicateHandle(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, navigations.CreateNavigationInput{Name: "Main", Handle: "main"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, navigations.CreateNavigationInput{Name: "Other", Handle: "MAIN"})
	if !errors.Is(err, navigations.ErrHandleExists) {
		t.Fatalf("expected ErrHandleExists, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected conflict category, got %v", err)
	}
}

func TestServiceCreateReusesHandleAfterRename(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first, err := svc.Create(ctx, navigations.CreateNavigationInput{Name: "Main", Handle: "main"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	renamed := "primary"
	if _, err := svc.Update(ctx, navigations.UpdateNavigationInput{ID: first.ID, Handle: &renamed}); err != nil {
		t.Fatalf("rename: %v", err)
	}

	second, err := svc.Create(ctx, navigations.CreateNavigationInput{Name: "New Main", Handle: "main"})
	if err != nil {
		t.Fatalf("create after rename: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected a fresh id, both are %s", first.ID)
	}

	primary, err := svc.GetByHandle(ctx, "primary")
	if err != nil {
		t.Fatalf("get primary: %v", err)
	}
	if primary.ID != first.ID || primary.Name != "Main" {
		t.Fatalf("renamed navigation was overwritten: %+v", primary)
	}
	reused, err := svc.GetByHandle(ctx, "main")
	if err != nil {
		t.Fatalf("get main: %v", err)
	}
	if reused.ID != second.ID {
		t.Fatalf("expected main to resolve to %s, got %s", second.ID, reused.ID)
	}
	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 navigations, got %d", len(all))
	}
}

func TestMemoryRepositoryRejectsExistingID(t *testing.T) {
	repo := navigations.NewMemoryNavigationRepository()
	ctx := context.Background()
	id := uuid.New()

	if _, err := repo.Create(ctx, &navigations.Navigation{ID: id, Name: "Main", Handle: "main"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.Create(ctx, &navigations.Navigation{ID: id, Name: "Other", Handle: "other"})
	if !errors.Is(err, navigations.ErrIDExists) {
		t.Fatalf("expected ErrIDExists, got %v", err)
	}
	if _, err := repo.GetByHandle(ctx, "other"); err == nil {
		t.Fatalf("rejected record must not be indexed")
	}
	record, err := repo.GetByID(ctx, id)
	if err != nil || record.Handle != "main" {
		t.Fatalf("expected original record, got %+v (%v)", record, err)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cases := []struct {
		name  string
		input navigations.CreateNavigationInput
		want  error
	}{
		{"missing name", navigations.CreateNavigationInput{Handle: "main"}, navigations.ErrNameRequired},
		{"invalid handle", navigations.CreateNavigationInput{Name: "Main", Handle: "@@@"}, navigations.ErrHandleInvalid},
		{"negative floor", navigations.CreateNavigationInput{Name: "Main", Settings: navigations.Settings{CanMoveFromLevel: -1}}, navigations.ErrSettingsInvalid},
		{"empty source", navigations.CreateNavigationInput{Name: "Main", Settings: navigations.Settings{EntrySources: []string{""}}}, navigations.ErrSettingsInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation category, got %v", err)
			}
		})
	}
}

func TestServiceUpdateIsPartial(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	nav, err := svc.Create(ctx, navigations.CreateNavigationInput{Name: "Main", Settings: navigations.Settings{MaxLevels: 2}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other, err := svc.Create(ctx, navigations.CreateNavigationInput{Name: "Footer"})
	if err != nil {
		t.Fatalf("create footer: %v", err)
	}

	name := "Primary"
	updated, err := svc.Update(ctx, navigations.UpdateNavigationInput{ID: nav.ID, Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Primary" || updated.Handle != "main" || updated.Settings.MaxLevels != 2 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	taken := "footer"
	if _, err := svc.Update(ctx, navigations.UpdateNavigationInput{ID: nav.ID, Handle: &taken}); !errors.Is(err, navigations.ErrHandleExists) {
		t.Fatalf("expected ErrHandleExists, got %v", err)
	}

	fresh := "primary"
	renamed, err := svc.Update(ctx, navigations.UpdateNavigationInput{ID: nav.ID, Handle: &fresh})
	if err != nil {
		t.Fatalf("rename handle: %v", err)
	}
	if renamed.Handle != "primary" || renamed.ID != nav.ID {
		t.Fatalf("expected handle rename to keep the id, got %+v", renamed)
	}
	if _, err := svc.GetByHandle(ctx, "main"); !errors.Is(err, navigations.ErrNavigationNotFound) {
		t.Fatalf("expected old handle released, got %v", err)
	}
	if _, err := svc.GetByHandle(ctx, other.Handle); err != nil {
		t.Fatalf("expected footer untouched: %v", err)
	}
}

func TestServiceDeleteCascadesNodes(t *testing.T) {
	cleaner := &recordingCleaner{count: 4}
	svc := newService(navigations.WithNodeCleaner(cleaner))
	ctx := context.Background()

	nav, err := svc.Create(ctx, navigations.CreateNavigationInput{Name: "Main"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, nav.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cleaner.calls) != 1 || cleaner.calls[0] != nav.ID {
		t.Fatalf("expected node cascade for %s, got %v", nav.ID, cleaner.calls)
	}
	exists, err := svc.Exists(ctx, nav.ID)
	if err != nil || exists {
		t.Fatalf("expected navigation gone, exists=%v err=%v", exists, err)
	}
	if err := svc.Delete(ctx, nav.ID); !errors.Is(err, navigations.ErrNavigationNotFound) {
		t.Fatalf("expected ErrNavigationNotFound on second delete, got %v", err)
	}
}

func TestServiceListSortedByHandle(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	for _, name := range []string{"Main", "Footer", "Sidebar"} {
		if _, err := svc.Create(ctx, navigations.CreateNavigationInput{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var handles []string
	for _, nav := range list {
		handles = append(handles, nav.Handle)
	}
	if len(handles) != 3 || handles[0] != "footer" || handles[1] != "main" || handles[2] != "sidebar" {
		t.Fatalf("unexpected order %v", handles)
	}
}
