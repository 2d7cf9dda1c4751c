package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mattn/go-sqlite3"

	"shoplist/internal/shop"
)

// newTestBackend creates an in-memory backend with the schema applied.
func newTestBackend(t *testing.T) *SQLiteBackend {
	t.Helper()

	b, err := NewSQLiteBackend(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := b.MigrateUp(); err != nil {
		b.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}
	t.Cleanup(func() {
		b.Close()
	})
	return b
}

func TestSQLiteBackend_Get(t *testing.T) {
	t.Run("returns nil when key not found", func(t *testing.T) {
		b := newTestBackend(t)

		value, version, err := b.Get(shop.KeyProducts)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if value != nil || version != 0 {
			t.Errorf("Get() = (%q, %d), want (nil, 0)", value, version)
		}
	})

	t.Run("returns stored value and version", func(t *testing.T) {
		b := newTestBackend(t)

		if _, err := b.Put(shop.KeyProducts, []byte(`[]`), 0); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		value, version, err := b.Get(shop.KeyProducts)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(value) != "[]" || version != 1 {
			t.Errorf("Get() = (%q, %d), want (\"[]\", 1)", value, version)
		}
	})
}

func TestSQLiteBackend_Put(t *testing.T) {
	t.Run("increments version on each write", func(t *testing.T) {
		b := newTestBackend(t)

		v1, err := b.Put("k", []byte("a"), 0)
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		v2, err := b.Put("k", []byte("b"), v1)
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if v1 != 1 || v2 != 2 {
			t.Errorf("versions = %d, %d, want 1, 2", v1, v2)
		}
	})

	t.Run("rejects stale version", func(t *testing.T) {
		b := newTestBackend(t)

		if _, err := b.Put("k", []byte("a"), 0); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if _, err := b.Put("k", []byte("b"), 0); !errors.Is(err, shop.ErrVersionConflict) {
			t.Errorf("Put() error = %v, want ErrVersionConflict", err)
		}

		value, _, _ := b.Get("k")
		if string(value) != "a" {
			t.Errorf("value after conflict = %q, want %q", value, "a")
		}
	})

	t.Run("any version overwrites", func(t *testing.T) {
		b := newTestBackend(t)

		if _, err := b.Put("k", []byte("a"), 0); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		v, err := b.Put("k", []byte("b"), shop.AnyVersion)
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if v != 2 {
			t.Errorf("version = %d, want 2", v)
		}
	})
}

func TestSQLiteBackend_Delete(t *testing.T) {
	b := newTestBackend(t)

	if _, err := b.Put("k", []byte("a"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := b.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := b.Delete("k"); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
	value, version, err := b.Get("k")
	if err != nil || value != nil || version != 0 {
		t.Errorf("Get() after delete = (%q, %d, %v), want (nil, 0, nil)", value, version, err)
	}
}

func TestSQLiteBackend_CheckMigrations(t *testing.T) {
	b, err := NewSQLiteBackend(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteBackend() error = %v", err)
	}
	defer b.Close()

	if err := b.CheckMigrations(); err == nil {
		t.Error("CheckMigrations() on fresh database = nil, want error")
	}
	if err := b.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if err := b.CheckMigrations(); err != nil {
		t.Errorf("CheckMigrations() after migrate = %v, want nil", err)
	}
}

func TestSQLiteBackend_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shoplist.db")

	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("NewSQLiteBackend() error = %v", err)
	}
	if err := b.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if _, err := b.Put(shop.KeySettings, []byte(`{"theme":"dark"}`), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	b.Close()

	reopened, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	value, version, err := reopened.Get(shop.KeySettings)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(value) != `{"theme":"dark"}` || version != 1 {
		t.Errorf("Get() = (%q, %d)", value, version)
	}
}

func TestSQLiteBackend_BackupTo(t *testing.T) {
	b := newTestBackend(t)
	if _, err := b.Put("k", []byte("a"), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	dest := filepath.Join(t.TempDir(), "copy.db")
	if err := b.BackupTo(dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}

	copied, err := NewSQLiteBackend(dest)
	if err != nil {
		t.Fatalf("open copy: %v", err)
	}
	defer copied.Close()

	value, _, err := copied.Get("k")
	if err != nil || string(value) != "a" {
		t.Errorf("copy Get() = (%q, %v), want (\"a\", nil)", value, err)
	}
}

func TestSQLiteBackend_ConcurrentWritersConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shoplist.db")

	open := func() *SQLiteBackend {
		b, err := NewSQLiteBackend(path)
		if err != nil {
			t.Fatalf("NewSQLiteBackend() error = %v", err)
		}
		t.Cleanup(func() { b.Close() })
		return b
	}
	first := open()
	if err := first.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	second := open()

	const writers = 8
	const rounds = 20

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		unexpected []error
	)
	for w := 0; w < writers; w++ {
		b := first
		if w%2 == 1 {
			b = second
		}
		wg.Add(1)
		go func(w int, b *SQLiteBackend) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				_, version, err := b.Get(shop.KeyProducts)
				if err == nil {
					_, err = b.Put(shop.KeyProducts, []byte(fmt.Sprintf("%d-%d", w, r)), version)
				}

				mu.Lock()
				switch {
				case err == nil:
					succeeded++
				case !errors.Is(err, shop.ErrVersionConflict):
					unexpected = append(unexpected, err)
				}
				mu.Unlock()
			}
		}(w, b)
	}
	wg.Wait()

	for _, err := range unexpected {
		t.Errorf("concurrent Put() error = %v, want nil or ErrVersionConflict", err)
	}

	_, version, err := first.Get(shop.KeyProducts)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if int(version) != succeeded {
		t.Errorf("final version = %d, want %d (one per successful write)", version, succeeded)
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: true},
		{name: "wrapped locked", err: fmt.Errorf("commit: %w", sqlite3.Error{Code: sqlite3.ErrLocked}), want: true},
		{name: "constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint}, want: false},
		{name: "other", err: errors.New("disk on fire"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBusy(tt.err); got != tt.want {
				t.Errorf("isBusy(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
