package vault

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"shoplist/internal/shop"
)

// MemoryVault is an in-memory backup destination, useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	backups map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryVault creates an empty in-memory vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{backups: make(map[string][]byte)}
}

// Put stores a backup. Backups are write-once.
func (m *MemoryVault) Put(name string, r io.Reader, size int64) error {
	if err := checkName(name); err != nil {
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.backups[name]; ok {
		return fmt.Errorf("backup already exists: %s", name)
	}
	m.backups[name] = data
	return nil
}

// Get writes the named backup to w.
func (m *MemoryVault) Get(name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.backups[name]
	if !ok {
		return fmt.Errorf("%w: %s", shop.ErrBackupNotFound, name)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// List returns the stored backup names in lexical order.
func (m *MemoryVault) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.backups))
	for name := range m.backups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements shop.BackupDestination
var _ shop.BackupDestination = (*MemoryVault)(nil)
