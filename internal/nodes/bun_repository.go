package nodes

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunNodeRepository implements NodeRepository with optional caching.
type BunNodeRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Node]
	cacheService cache.CacheService
	cachePrefix  string
}

const nodeNamespace = "navigation_node"

// NewBunNodeRepository creates a node repository without caching.
func NewBunNodeRepository(db *bun.DB) *BunNodeRepository {
	return NewBunNodeRepositoryWithCache(db, nil, nil)
}

// NewBunNodeRepositoryWithCache creates a node repository with caching services.
func NewBunNodeRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunNodeRepository {
	base := NewNodeRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(nodeNamespace)
	}
	return &BunNodeRepository{db: db, repo: base, cacheService: svc, cachePrefix: prefix}
}

// ListByNavigation reads straight from the database so ordering decisions
// never see a cached sibling group.
func (r *BunNodeRepository) ListByNavigation(ctx context.Context, navigationID uuid.UUID, locale string) ([]*Node, error) {
	var records []*Node
	if err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.navigation_id = ?", navigationID).
		Where("?TableAlias.locale = ?", locale).
		OrderExpr("?TableAlias.sort_order ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list navigation nodes: %w", err)
	}
	sortFlat(records)
	return records, nil
}

func (r *BunNodeRepository) ListByElement(ctx context.Context, elementID uuid.UUID, elementType, locale string) ([]*Node, error) {
	var records []*Node
	q := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.linked_element_id = ?", elementID).
		Where("?TableAlias.linked_element_type = ?", elementType)
	if locale != "" {
		q = q.Where("?TableAlias.locale = ?", locale)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list linked navigation nodes: %w", err)
	}
	sortFlat(records)
	return records, nil
}

func (r *BunNodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Node, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "navigation_node", id.String())
	}
	return record, nil
}

func (r *BunNodeRepository) Create(ctx context.Context, node *Node) (*Node, error) {
	if node.ID == uuid.Nil {
		node.ID = uuid.New()
	}
	record, err := r.repo.Create(ctx, node)
	if err != nil {
		return nil, err
	}
	return record, r.InvalidateCache(ctx)
}

// Update persists the editable columns only; parent and order go through
// ApplyHierarchy.
func (r *BunNodeRepository) Update(ctx context.Context, node *Node) (*Node, error) {
	res, err := r.db.NewUpdate().
		Model(node).
		Column("name", "url", "list_class", "blank", "enabled", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update navigation node %s: %w", node.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, &NotFoundError{Resource: "navigation_node", Key: node.ID.String()}
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}

	updated := &Node{ID: node.ID}
	if err := r.db.NewSelect().Model(updated).WherePK().Scan(ctx); err != nil {
		return nil, fmt.Errorf("reload navigation node %s: %w", node.ID, err)
	}
	return updated, nil
}

func (r *BunNodeRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	return r.ApplyHierarchy(ctx, HierarchyChange{Delete: ids})
}

func (r *BunNodeRepository) ApplyHierarchy(ctx context.Context, change HierarchyChange) error {
	if change.Empty() {
		return nil
	}
	if r.db == nil {
		return fmt.Errorf("navigation node repository: database not configured")
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(change.Delete) > 0 {
			if _, err := tx.NewDelete().
				Model((*Node)(nil)).
				Where("?TableAlias.id IN (?)", bun.In(change.Delete)).
				Exec(ctx); err != nil {
				return fmt.Errorf("delete navigation nodes: %w", err)
			}
		}
		for _, node := range change.Update {
			if _, err := tx.NewUpdate().
				Model(node).
				Column("parent_id", "sort_order", "updated_at").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("update navigation node %s: %w", node.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

func (r *BunNodeRepository) DeleteByNavigation(ctx context.Context, navigationID uuid.UUID) (int, error) {
	if r.db == nil {
		return 0, fmt.Errorf("navigation node repository: database not configured")
	}
	res, err := r.db.NewDelete().
		Model((*Node)(nil)).
		Where("?TableAlias.navigation_id = ?", navigationID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete navigation nodes: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), r.InvalidateCache(ctx)
}

func (r *BunNodeRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
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
