package interfaces

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Element types a navigation node can mirror.
const (
	ElementTypeEntry    = "entry"
	ElementTypeCategory = "category"
	ElementTypeAsset    = "asset"
)

// ErrContentEntityNotFound signals that a lookup could not resolve an entity.
var ErrContentEntityNotFound = errors.New("content entity not found")

// ContentEntity is the narrow view of an external content record that
// navigation nodes mirror.
type ContentEntity struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	Title   string    `json:"title"`
	URI     string    `json:"uri"`
	Enabled bool      `json:"enabled"`
	Locale  string    `json:"locale"`
}

// ContentEntityLookup resolves content entities owned by the host CMS.
// GetByID returns (nil, nil) or an error wrapping ErrContentEntityNotFound
// when the entity does not exist in the requested locale.
type ContentEntityLookup interface {
	GetByID(ctx context.Context, id uuid.UUID, elementType, locale string) (*ContentEntity, error)
	// GetDescendantsOf returns every entity nested below id in the content
	// hierarchy, at any depth.
	GetDescendantsOf(ctx context.Context, id uuid.UUID, elementType, locale string) ([]ContentEntity, error)
}

// IsKnownElementType reports whether the value names a supported element type.
func IsKnownElementType(value string) bool {
	switch value {
	case ElementTypeEntry, ElementTypeCategory, ElementTypeAsset:
		return true
	default:
		return false
	}
}
