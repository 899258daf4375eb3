package structures

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrParamInvalid is returned when a structure parameter has the wrong shape.
var ErrParamInvalid = errors.New("structures: parameter invalid")

// Params controls structure assembly. Presentation carries rendering-only
// parameters untouched for a renderer layered on top.
type Params struct {
	MaxLevel           int
	OverrideStatus     bool
	StartFromID        *uuid.UUID
	IgnoreActiveChilds bool
	ActivePath         string
	Presentation       map[string]any
}

var presentationKeys = map[string]bool{
	"id":            true,
	"class":         true,
	"classActive":   true,
	"classBlank":    true,
	"classChildren": true,
	"classFirst":    true,
	"linkRel":       true,
	"excludeUl":     true,
}

// ParseParams reads the template style parameter bag. Unknown keys are
// ignored.
func ParseParams(raw map[string]any) (Params, error) {
	var params Params
	for key, value := range raw {
		switch {
		case key == "maxLevel":
			n, err := intParam(key, value)
			if err != nil {
				return Params{}, err
			}
			if n < 0 {
				return Params{}, fmt.Errorf("%w: %s must not be negative", ErrParamInvalid, key)
			}
			params.MaxLevel = n
		case key == "overrideStatus":
			b, err := boolParam(key, value)
			if err != nil {
				return Params{}, err
			}
			params.OverrideStatus = b
		case key == "ignoreActiveChilds":
			b, err := boolParam(key, value)
			if err != nil {
				return Params{}, err
			}
			params.IgnoreActiveChilds = b
		case key == "startFromId":
			id, err := uuidParam(key, value)
			if err != nil {
				return Params{}, err
			}
			params.StartFromID = id
		case key == "activePath":
			s, ok := value.(string)
			if !ok {
				return Params{}, fmt.Errorf("%w: %s must be a string", ErrParamInvalid, key)
			}
			params.ActivePath = s
		case presentationKeys[key] || isLevelClass(key):
			if params.Presentation == nil {
				params.Presentation = make(map[string]any)
			}
			params.Presentation[key] = value
		}
	}
	return params, nil
}

func isLevelClass(key string) bool {
	level, ok := strings.CutPrefix(key, "classLevel")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(level)
	return err == nil && n > 0
}

func intParam(key string, value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %s must be an integer", ErrParamInvalid, key)
}

func boolParam(key string, value any) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b, nil
		}
	}
	return false, fmt.Errorf("%w: %s must be a boolean", ErrParamInvalid, key)
}

func uuidParam(key string, value any) (*uuid.UUID, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		if v == uuid.Nil {
			return nil, nil
		}
		return &v, nil
	case *uuid.UUID:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err == nil {
			return &id, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be a uuid", ErrParamInvalid, key)
}
