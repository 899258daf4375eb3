package nodes

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type memoryNodeRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Node
	// byNavigation indexes node ids per navigation for list and cascade.
	byNavigation map[uuid.UUID]map[uuid.UUID]struct{}
}

// NewMemoryNodeRepository constructs an in-memory node repository.
func NewMemoryNodeRepository() NodeRepository {
	return &memoryNodeRepository{
		byID:         make(map[uuid.UUID]*Node),
		byNavigation: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

func (m *memoryNodeRepository) ListByNavigation(_ context.Context, navigationID uuid.UUID, locale string) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byNavigation[navigationID]
	records := make([]*Node, 0, len(ids))
	for id := range ids {
		node := m.byID[id]
		if node.Locale != locale {
			continue
		}
		records = append(records, node.Clone())
	}
	sortFlat(records)
	return records, nil
}

func (m *memoryNodeRepository) ListByElement(_ context.Context, elementID uuid.UUID, elementType, locale string) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []*Node
	for _, node := range m.byID {
		if node.LinkedElementID == nil || *node.LinkedElementID != elementID {
			continue
		}
		if node.LinkedElementType != elementType {
			continue
		}
		if locale != "" && node.Locale != locale {
			continue
		}
		records = append(records, node.Clone())
	}
	sortFlat(records)
	return records, nil
}

func (m *memoryNodeRepository) GetByID(_ context.Context, id uuid.UUID) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "navigation_node", Key: id.String()}
	}
	return node.Clone(), nil
}

func (m *memoryNodeRepository) Create(_ context.Context, node *Node) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := node.Clone()
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.byID[cloned.ID] = cloned
	ids, ok := m.byNavigation[cloned.NavigationID]
	if !ok {
		ids = make(map[uuid.UUID]struct{})
		m.byNavigation[cloned.NavigationID] = ids
	}
	ids[cloned.ID] = struct{}{}
	return cloned.Clone(), nil
}

func (m *memoryNodeRepository) Update(_ context.Context, node *Node) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[node.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "navigation_node", Key: node.ID.String()}
	}
	existing.Name = node.Name
	existing.URL = node.URL
	existing.ListClass = node.ListClass
	existing.Blank = node.Blank
	existing.Enabled = node.Enabled
	existing.UpdatedAt = node.UpdatedAt
	return existing.Clone(), nil
}

func (m *memoryNodeRepository) DeleteByIDs(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteLocked(ids)
	return nil
}

func (m *memoryNodeRepository) ApplyHierarchy(_ context.Context, change HierarchyChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// validate before mutating so the change is all or nothing
	for _, node := range change.Update {
		if _, ok := m.byID[node.ID]; !ok {
			return &NotFoundError{Resource: "navigation_node", Key: node.ID.String()}
		}
	}

	m.deleteLocked(change.Delete)
	for _, node := range change.Update {
		existing, ok := m.byID[node.ID]
		if !ok {
			continue
		}
		existing.ParentID = cloneUUIDPtr(node.ParentID)
		existing.Order = node.Order
		existing.UpdatedAt = node.UpdatedAt
	}
	return nil
}

func (m *memoryNodeRepository) DeleteByNavigation(_ context.Context, navigationID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.byNavigation[navigationID]
	for id := range ids {
		delete(m.byID, id)
	}
	delete(m.byNavigation, navigationID)
	return len(ids), nil
}

func (m *memoryNodeRepository) deleteLocked(ids []uuid.UUID) {
	for _, id := range ids {
		node, ok := m.byID[id]
		if !ok {
			continue
		}
		delete(m.byID, id)
		if set := m.byNavigation[node.NavigationID]; set != nil {
			delete(set, id)
		}
	}
}

// sortFlat orders nodes by parent, root group first, then by sibling order.
func sortFlat(records []*Node) {
	slices.SortStableFunc(records, func(a, b *Node) int {
		pa, pb := parentKey(a.ParentID), parentKey(b.ParentID)
		if pa != pb {
			if pa == uuid.Nil {
				return -1
			}
			if pb == uuid.Nil {
				return 1
			}
			return cmp.Compare(pa.String(), pb.String())
		}
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
