package kv

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"shoplist/internal/shop"
)

// FileSystemBackend stores each key as a pair of files under a directory:
//
//	<root>/
//	  <key>.json      (the value)
//	  <key>.version   (decimal version stamp)
//
// Values are replaced atomically (temp file + rename). The version check is
// serialized within one process only; use the sqlite, badger or redis
// backend when several processes write the same data directory.
type FileSystemBackend struct {
	root string
	mu   sync.Mutex
}

// NewFileSystemBackend creates a backend rooted at root, creating the
// directory if needed.
func NewFileSystemBackend(root string) (*FileSystemBackend, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileSystemBackend{root: root}, nil
}

func (b *FileSystemBackend) valuePath(key string) string {
	return filepath.Join(b.root, key+".json")
}

func (b *FileSystemBackend) versionPath(key string) string {
	return filepath.Join(b.root, key+".version")
}

func (b *FileSystemBackend) Get(key string) ([]byte, int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.valuePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("reading value file: %w", err)
	}

	version, err := b.readVersion(key)
	if err != nil {
		return nil, 0, err
	}
	return data, version, nil
}

func (b *FileSystemBackend) Put(key string, value []byte, ifVersion int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, err := b.readVersion(key)
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(b.valuePath(key)); os.IsNotExist(err) {
		current = 0
	}
	if ifVersion != shop.AnyVersion && ifVersion != current {
		return 0, shop.ErrVersionConflict
	}

	next := current + 1
	if err := writeFileAtomic(b.valuePath(key), bytes.NewReader(value), int64(len(value))); err != nil {
		return 0, err
	}
	versionData := []byte(strconv.FormatInt(next, 10))
	if err := writeFileAtomic(b.versionPath(key), bytes.NewReader(versionData), int64(len(versionData))); err != nil {
		return 0, err
	}
	return next, nil
}

func (b *FileSystemBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range []string{b.valuePath(key), b.versionPath(key)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", filepath.Base(p), err)
		}
	}
	return nil
}

// Close is a no-op; no file handles are held between calls.
func (b *FileSystemBackend) Close() error {
	return nil
}

// readVersion returns the stored version for key, or 0 if there is none.
func (b *FileSystemBackend) readVersion(key string) (int64, error) {
	data, err := os.ReadFile(b.versionPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// writeFileAtomic writes r to destPath via a temp file in the same directory
// followed by a rename, so readers never observe a partial value.
func writeFileAtomic(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemBackend implements shop.Backend
var _ shop.Backend = (*FileSystemBackend)(nil)
