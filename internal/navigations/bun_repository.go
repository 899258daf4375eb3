package navigations

import (
	"context"
	"fmt"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunNavigationRepository implements NavigationRepository with optional caching.
type BunNavigationRepository struct {
	repo         repository.Repository[*Navigation]
	cacheService cache.CacheService
	cachePrefix  string
}

const navigationNamespace = "navigation"

// NewBunNavigationRepository creates a navigation repository without caching.
func NewBunNavigationRepository(db *bun.DB) *BunNavigationRepository {
	return NewBunNavigationRepositoryWithCache(db, nil, nil)
}

// NewBunNavigationRepositoryWithCache creates a navigation repository with caching services.
func NewBunNavigationRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunNavigationRepository {
	base := NewNavigationRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(navigationNamespace)
	}
	return &BunNavigationRepository{
		repo:         base,
		cacheService: svc,
		cachePrefix:  prefix,
	}
}

func (r *BunNavigationRepository) Create(ctx context.Context, navigation *Navigation) (*Navigation, error) {
	record, err := r.repo.Create(ctx, navigation)
	if err != nil {
		return nil, err
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunNavigationRepository) GetByID(ctx context.Context, id uuid.UUID) (*Navigation, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "navigation", id.String())
	}
	return record, nil
}

func (r *BunNavigationRepository) GetByHandle(ctx context.Context, handle string) (*Navigation, error) {
	record, err := r.repo.GetByIdentifier(ctx, handle)
	if err != nil {
		return nil, mapRepositoryError(err, "navigation", handle)
	}
	return record, nil
}

func (r *BunNavigationRepository) List(ctx context.Context) ([]*Navigation, error) {
	records, _, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sortByHandle(records)
	return records, nil
}

func (r *BunNavigationRepository) Update(ctx context.Context, navigation *Navigation) (*Navigation, error) {
	record, err := r.repo.Update(ctx, navigation)
	if err != nil {
		return nil, mapRepositoryError(err, "navigation", navigation.ID.String())
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunNavigationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Navigation{ID: id}); err != nil {
		return mapRepositoryError(err, "navigation", id.String())
	}
	return r.InvalidateCache(ctx)
}

func (r *BunNavigationRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func sortByHandle(records []*Navigation) {
	slices.SortFunc(records, func(a, b *Navigation) int {
		return strings.Compare(a.Handle, b.Handle)
	})
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}

func cachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}
