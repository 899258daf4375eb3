package nodes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// NodeRepository exposes persistence operations for navigation nodes. It
// holds no cross-node logic; callers keep sibling orders dense.
type NodeRepository interface {
	// ListByNavigation returns the locale-scoped nodes of a navigation sorted
	// by parent (root group first) and then by order.
	ListByNavigation(ctx context.Context, navigationID uuid.UUID, locale string) ([]*Node, error)
	// ListByElement returns nodes linked to a content entity. An empty locale
	// matches every locale.
	ListByElement(ctx context.Context, elementID uuid.UUID, elementType, locale string) ([]*Node, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Node, error)
	Create(ctx context.Context, node *Node) (*Node, error)
	Update(ctx context.Context, node *Node) (*Node, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
	// ApplyHierarchy deletes and reorders nodes atomically.
	ApplyHierarchy(ctx context.Context, change HierarchyChange) error
	DeleteByNavigation(ctx context.Context, navigationID uuid.UUID) (int, error)
}

// NotFoundError is returned when a node cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
