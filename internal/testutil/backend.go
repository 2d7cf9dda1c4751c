package testutil

import (
	"sync"
	"testing"

	"shoplist/internal/database"
	"shoplist/internal/kv"
	"shoplist/internal/shop"
)

// NewTestBackend creates a new in-memory backend for testing.
func NewTestBackend() *kv.MemoryBackend {
	return kv.NewMemoryBackend()
}

// NewTestSQLiteBackend creates a new in-memory SQLite backend with migrations applied.
// The database is automatically closed when the test completes.
func NewTestSQLiteBackend(t *testing.T) *database.SQLiteBackend {
	t.Helper()

	b, err := database.NewSQLiteBackend(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := b.MigrateUp(); err != nil {
		b.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	t.Cleanup(func() {
		b.Close()
	})
	return b
}

// FailingBackend wraps a Backend and fails selected operations on demand.
type FailingBackend struct {
	shop.Backend

	mu       sync.Mutex
	failGet  map[string]error
	failPut  map[string]error
	putCalls map[string]int
}

// NewFailingBackend wraps inner; nothing fails until told to.
func NewFailingBackend(inner shop.Backend) *FailingBackend {
	return &FailingBackend{
		Backend:  inner,
		failGet:  make(map[string]error),
		failPut:  make(map[string]error),
		putCalls: make(map[string]int),
	}
}

// FailGet makes every Get of key return err. A nil err clears the failure.
func (f *FailingBackend) FailGet(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failGet, key)
		return
	}
	f.failGet[key] = err
}

// FailPut makes every Put of key return err. A nil err clears the failure.
func (f *FailingBackend) FailPut(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failPut, key)
		return
	}
	f.failPut[key] = err
}

// PutCalls reports how many times Put was attempted for key.
func (f *FailingBackend) PutCalls(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putCalls[key]
}

func (f *FailingBackend) Get(key string) ([]byte, int64, error) {
	f.mu.Lock()
	err := f.failGet[key]
	f.mu.Unlock()
	if err != nil {
		return nil, 0, err
	}
	return f.Backend.Get(key)
}

func (f *FailingBackend) Put(key string, value []byte, ifVersion int64) (int64, error) {
	f.mu.Lock()
	f.putCalls[key]++
	err := f.failPut[key]
	f.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return f.Backend.Put(key, value, ifVersion)
}
