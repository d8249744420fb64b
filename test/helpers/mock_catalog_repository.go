package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// MockCatalogRepository is an in-memory crafting.CatalogRepository
type MockCatalogRepository struct {
	mu       sync.RWMutex
	catalogs map[string]*crafting.CatalogDefinition
	saveErr  error
}

// NewMockCatalogRepository creates an empty repository
func NewMockCatalogRepository() *MockCatalogRepository {
	return &MockCatalogRepository{catalogs: make(map[string]*crafting.CatalogDefinition)}
}

// SetSaveError makes every subsequent Save fail with err
func (m *MockCatalogRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MockCatalogRepository) Save(ctx context.Context, name string, def *crafting.CatalogDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.catalogs[name] = def
	return nil
}

func (m *MockCatalogRepository) Load(ctx context.Context, name string) (*crafting.CatalogDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.catalogs[name]
	if !ok {
		return nil, &crafting.ErrCatalogNotFound{Name: name}
	}
	return def, nil
}

func (m *MockCatalogRepository) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.catalogs))
	for name := range m.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

var _ crafting.CatalogRepository = (*MockCatalogRepository)(nil)
