package navigations

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewNavigationRepository creates a repository for Navigation entities.
func NewNavigationRepository(db *bun.DB) repository.Repository[*Navigation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Navigation]{
		NewRecord: func() *Navigation { return &Navigation{} },
		GetID: func(n *Navigation) uuid.UUID {
			return n.ID
		},
		SetID: func(n *Navigation, id uuid.UUID) {
			n.ID = id
		},
		GetIdentifier: func() string {
			return "handle"
		},
		GetIdentifierValue: func(n *Navigation) string {
			return n.Handle
		},
	})
}
