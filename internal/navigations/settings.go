package navigations

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// AllSources is the entry source wildcard.
const AllSources = "*"

// Settings holds the per navigation editing policy. Zero values mean
// "unbounded" for every field.
type Settings struct {
	// MaxLevels bounds the tree depth.
	MaxLevels int `json:"max_levels,omitempty"`
	// CanDeleteFromLevel is the shallowest level non admins may delete at.
	CanDeleteFromLevel int `json:"can_delete_from_level,omitempty"`
	// CanMoveFromLevel is the shallowest level non admins may move at.
	CanMoveFromLevel int `json:"can_move_from_level,omitempty"`
	// EntrySources restricts which content sources may be linked.
	EntrySources []string `json:"entry_sources,omitempty"`
}

// Validate checks the settings ranges.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.MaxLevels, validation.Min(0)),
		validation.Field(&s.CanDeleteFromLevel, validation.Min(0)),
		validation.Field(&s.CanMoveFromLevel, validation.Min(0)),
		validation.Field(&s.EntrySources, validation.Each(validation.Required)),
	)
}

// Clone returns a copy that shares no slices with s.
func (s Settings) Clone() Settings {
	s.EntrySources = slices.Clone(s.EntrySources)
	return s
}

// AllowsDepth reports whether a node may sit at level.
func (s Settings) AllowsDepth(level int) bool {
	return s.MaxLevels <= 0 || level <= s.MaxLevels
}

// AllowsMove reports whether a node at level may be moved. Admins bypass
// the floor.
func (s Settings) AllowsMove(level int, admin bool) bool {
	return admin || s.CanMoveFromLevel <= 0 || level >= s.CanMoveFromLevel
}

// AllowsDelete reports whether a node at level may be deleted. Admins
// bypass the floor.
func (s Settings) AllowsDelete(level int, admin bool) bool {
	return admin || s.CanDeleteFromLevel <= 0 || level >= s.CanDeleteFromLevel
}

// AllowsSource reports whether content from source may be linked.
func (s Settings) AllowsSource(source string) bool {
	if len(s.EntrySources) == 0 {
		return true
	}
	source = strings.TrimSpace(source)
	for _, allowed := range s.EntrySources {
		if allowed == AllSources || allowed == source {
			return true
		}
	}
	return false
}

//go:embed settings.schema.json
var settingsSchemaJSON []byte

var (
	settingsSchemaOnce sync.Once
	settingsSchema     *jsonschema.Schema
	settingsSchemaErr  error
)

func compiledSettingsSchema() (*jsonschema.Schema, error) {
	settingsSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("settings.schema.json", bytes.NewReader(settingsSchemaJSON)); err != nil {
			settingsSchemaErr = err
			return
		}
		settingsSchema, settingsSchemaErr = compiler.Compile("settings.schema.json")
	})
	return settingsSchema, settingsSchemaErr
}

// ParseSettings decodes a loosely typed settings bag as stored by earlier
// editors: camelCase keys, levels given as numbers or numeric strings, and
// entry sources as "*", a comma separated string or a list. Non numeric
// level values decode as unset.
func ParseSettings(raw map[string]any) (Settings, error) {
	if len(raw) == 0 {
		return Settings{}, nil
	}
	schema, err := compiledSettingsSchema()
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrSettingsInvalid, err)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrSettingsInvalid, err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrSettingsInvalid, err)
	}
	if err := schema.Validate(doc); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrSettingsInvalid, err)
	}

	settings := Settings{
		MaxLevels:          legacyLevel(raw["maxLevels"]),
		CanDeleteFromLevel: legacyLevel(raw["canDeleteFromLevel"]),
		CanMoveFromLevel:   legacyLevel(raw["canMoveFromLevel"]),
		EntrySources:       legacySources(raw["entrySources"]),
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrSettingsInvalid, err)
	}
	return settings, nil
}

func legacyLevel(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v != math.Trunc(v) {
			return 0
		}
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func legacySources(value any) []string {
	var parts []string
	switch v := value.(type) {
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	}
	var out []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == AllSources {
			return nil
		}
		if !slices.Contains(out, part) {
			out = append(out, part)
		}
	}
	return out
}
