package persistence

import (
	"context"
	"sync"
)

// MemoryStore is a process-local KeyValueStore. Nothing survives the process.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

// GetItems returns the values present for keys.
func (m *MemoryStore) GetItems(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := m.items[key]; ok {
			out[key] = value
		}
	}
	return out, nil
}

// SetItems writes all entries under one lock.
func (m *MemoryStore) SetItems(_ context.Context, items map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, value := range items {
		m.items[key] = value
	}
	return nil
}

// RemoveItems deletes keys under one lock.
func (m *MemoryStore) RemoveItems(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

// Len reports how many entries are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
