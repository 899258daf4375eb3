package nodes

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewNodeRepository creates a go-repository-bun repository for Node records.
func NewNodeRepository(db *bun.DB) repository.Repository[*Node] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Node]{
		NewRecord: func() *Node { return &Node{} },
		GetID: func(n *Node) uuid.UUID {
			return n.ID
		},
		SetID: func(n *Node, id uuid.UUID) {
			n.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(n *Node) string {
			return n.ID.String()
		},
	})
}
