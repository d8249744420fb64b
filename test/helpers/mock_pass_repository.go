package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// MockPassRepository keeps pass records in memory in insertion order
type MockPassRepository struct {
	mu        sync.RWMutex
	records   []*crafting.PassRecord
	recordErr error
}

// NewMockPassRepository creates an empty repository
func NewMockPassRepository() *MockPassRepository {
	return &MockPassRepository{}
}

// SetRecordError makes every subsequent Record fail with err
func (m *MockPassRepository) SetRecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErr = err
}

func (m *MockPassRepository) Record(ctx context.Context, record *crafting.PassRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *MockPassRepository) FindRecent(ctx context.Context, limit int) ([]*crafting.PassRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*crafting.PassRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// Records returns every stored record, oldest first
func (m *MockPassRepository) Records() []*crafting.PassRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*crafting.PassRecord(nil), m.records...)
}

var _ crafting.PassRepository = (*MockPassRepository)(nil)
