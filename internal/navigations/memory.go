package navigations

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryNavigationRepository struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*Navigation
	byHandle map[string]uuid.UUID
}

// NewMemoryNavigationRepository constructs an in-memory repository for navigations.
func NewMemoryNavigationRepository() NavigationRepository {
	return &memoryNavigationRepository{
		byID:     make(map[uuid.UUID]*Navigation),
		byHandle: make(map[string]uuid.UUID),
	}
}

func (m *memoryNavigationRepository) Create(_ context.Context, navigation *Navigation) (*Navigation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := navigation.Clone()
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	if _, exists := m.byID[cloned.ID]; exists {
		return nil, failure(ErrIDExists, map[string]any{"id": cloned.ID.String()})
	}
	m.byID[cloned.ID] = cloned
	m.byHandle[cloned.Handle] = cloned.ID
	return cloned.Clone(), nil
}

func (m *memoryNavigationRepository) GetByID(_ context.Context, id uuid.UUID) (*Navigation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "navigation", Key: id.String()}
	}
	return record.Clone(), nil
}

func (m *memoryNavigationRepository) GetByHandle(_ context.Context, handle string) (*Navigation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byHandle[handle]
	if !ok {
		return nil, &NotFoundError{Resource: "navigation", Key: handle}
	}
	return m.byID[id].Clone(), nil
}

func (m *memoryNavigationRepository) List(_ context.Context) ([]*Navigation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Navigation, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, record.Clone())
	}
	sortByHandle(records)
	return records, nil
}

func (m *memoryNavigationRepository) Update(_ context.Context, navigation *Navigation) (*Navigation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[navigation.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "navigation", Key: navigation.ID.String()}
	}
	if existing.Handle != navigation.Handle {
		delete(m.byHandle, existing.Handle)
	}
	cloned := navigation.Clone()
	m.byID[cloned.ID] = cloned
	m.byHandle[cloned.Handle] = cloned.ID
	return cloned.Clone(), nil
}

func (m *memoryNavigationRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "navigation", Key: id.String()}
	}
	delete(m.byHandle, existing.Handle)
	delete(m.byID, id)
	return nil
}
