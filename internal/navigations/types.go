package navigations

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Navigation is a named, handle addressed container of nodes.
type Navigation struct {
	bun.BaseModel `bun:"table:navigations,alias:nav"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Handle    string    `bun:"handle,notnull,unique" json:"handle"`
	Settings  Settings  `bun:"settings,type:jsonb,notnull" json:"settings"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Clone returns a deep copy of the navigation.
func (n *Navigation) Clone() *Navigation {
	if n == nil {
		return nil
	}
	cloned := *n
	cloned.Settings = n.Settings.Clone()
	return &cloned
}

// CreateNavigationInput captures the data required to register a navigation.
// Handle defaults to the slug of Name.
type CreateNavigationInput struct {
	ID       *uuid.UUID
	Name     string
	Handle   string
	Settings Settings
}

// UpdateNavigationInput applies a partial update. Nil fields are left as is.
type UpdateNavigationInput struct {
	ID       uuid.UUID
	Name     *string
	Handle   *string
	Settings *Settings
}
