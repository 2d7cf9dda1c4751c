package kv

import (
	"sync"

	"shoplist/internal/shop"
)

type memoryEntry struct {
	value   []byte
	version int64
}

// MemoryBackend keeps every key in process memory. Nothing survives a
// restart, which makes it the backend of choice for tests.
// This implementation is safe for concurrent use.
type MemoryBackend struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]memoryEntry)}
}

func (m *MemoryBackend) Get(key string) ([]byte, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, 0, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, e.version, nil
}

func (m *MemoryBackend) Put(key string, value []byte, ifVersion int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.entries[key].version
	if ifVersion != shop.AnyVersion && ifVersion != current {
		return 0, shop.ErrVersionConflict
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = memoryEntry{value: stored, version: current + 1}
	return current + 1, nil
}

func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Close is a no-op.
func (m *MemoryBackend) Close() error {
	return nil
}

// Compile-time check that MemoryBackend implements shop.Backend
var _ shop.Backend = (*MemoryBackend)(nil)
