package navigations

import (
	"context"

	"github.com/google/uuid"
)

// NavigationRepository persists navigation containers.
type NavigationRepository interface {
	Create(ctx context.Context, navigation *Navigation) (*Navigation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Navigation, error)
	GetByHandle(ctx context.Context, handle string) (*Navigation, error)
	List(ctx context.Context) ([]*Navigation, error)
	Update(ctx context.Context, navigation *Navigation) (*Navigation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
