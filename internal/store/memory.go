package store

import (
	"context"
	"sync"

	"github.com/petfood-ae/storefront/internal/core"
)

// MemorySnapshots is a process-local core.SnapshotStore
type MemorySnapshots struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemorySnapshots creates an empty snapshot store
func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{data: make(map[string][]byte)}
}

// Load returns a copy of the snapshot stored under key
func (m *MemorySnapshots) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[key]
	if !ok {
		return nil, core.ErrSnapshotNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data under key
func (m *MemorySnapshots) Save(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), data...)
	return nil
}
