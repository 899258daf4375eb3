package navigations_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/goliatone/go-navtree/internal/navigations"
)

func TestParseSettingsLegacyBag(t *testing.T) {
	settings, err := navigations.ParseSettings(map[string]any{
		"maxLevels":          "3",
		"canDeleteFromLevel": 2,
		"canMoveFromLevel":   "",
		"entrySources":       "section:news, section:pages,section:news",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if settings.MaxLevels != 3 || settings.CanDeleteFromLevel != 2 || settings.CanMoveFromLevel != 0 {
		t.Fatalf("unexpected levels: %+v", settings)
	}
	if !slices.Equal(settings.EntrySources, []string{"section:news", "section:pages"}) {
		t.Fatalf("unexpected sources: %v", settings.EntrySources)
	}
}

func TestParseSettingsTreatsNonNumericAsUnset(t *testing.T) {
	settings, err := navigations.ParseSettings(map[string]any{
		"maxLevels":    "unlimited",
		"entrySources": []any{"*"},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if settings.MaxLevels != 0 || settings.EntrySources != nil {
		t.Fatalf("expected unset settings, got %+v", settings)
	}
}

func TestParseSettingsRejectsInvalidShapes(t *testing.T) {
	cases := map[string]map[string]any{
		"negative number": {"maxLevels": -2},
		"negative string": {"canMoveFromLevel": "-1"},
		"object level":    {"maxLevels": map[string]any{"value": 2}},
		"numeric sources": {"entrySources": []any{1, 2}},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := navigations.ParseSettings(raw); !errors.Is(err, navigations.ErrSettingsInvalid) {
				t.Fatalf("expected ErrSettingsInvalid, got %v", err)
			}
		})
	}
}

func TestSettingsPolicies(t *testing.T) {
	settings := navigations.Settings{MaxLevels: 2, CanDeleteFromLevel: 2, CanMoveFromLevel: 3, EntrySources: []string{"section:news"}}

	if !settings.AllowsDepth(2) || settings.AllowsDepth(3) {
		t.Fatalf("unexpected depth policy")
	}
	if settings.AllowsDelete(1, false) || !settings.AllowsDelete(2, false) || !settings.AllowsDelete(1, true) {
		t.Fatalf("unexpected delete floor")
	}
	if settings.AllowsMove(2, false) || !settings.AllowsMove(3, false) || !settings.AllowsMove(1, true) {
		t.Fatalf("unexpected move floor")
	}
	if !settings.AllowsSource("section:news") || settings.AllowsSource("section:pages") {
		t.Fatalf("unexpected source filter")
	}

	var open navigations.Settings
	if !open.AllowsDepth(50) || !open.AllowsDelete(1, false) || !open.AllowsMove(1, false) || !open.AllowsSource("anything") {
		t.Fatalf("expected zero settings to allow everything")
	}
}
