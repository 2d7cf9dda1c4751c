package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shoplist/internal/database/migrations"
	"shoplist/internal/shop"

	"github.com/mattn/go-sqlite3"
)

// SQLiteBackend implements shop.Backend on a single kv table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens a SQLite database at path.
// path can be a file path or ":memory:" for an in-memory database.
// The schema is not touched; callers run MigrateUp or CheckMigrations.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
//
// Every transaction begins IMMEDIATE, taking the write lock before the
// version is read, and waits up to five seconds for another process's lock.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connectionString(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func connectionString(path string) string {
	return path + "?_txlock=immediate&_busy_timeout=5000"
}

// isBusy reports whether err is SQLite refusing a lock held by another
// connection.
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func (s *SQLiteBackend) Get(key string) ([]byte, int64, error) {
	var value []byte
	var version int64
	err := s.db.QueryRowContext(context.Background(),
		"SELECT value, version FROM kv WHERE key = ?", key).Scan(&value, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil // Not found
		}
		return nil, 0, fmt.Errorf("reading %s: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, version, nil
}

func (s *SQLiteBackend) Put(key string, value []byte, ifVersion int64) (int64, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		if isBusy(err) {
			return 0, shop.ErrVersionConflict
		}
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx, "SELECT version FROM kv WHERE key = ?", key).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("reading version of %s: %w", key, err)
	}
	if ifVersion != shop.AnyVersion && ifVersion != current {
		return 0, shop.ErrVersionConflict
	}

	next := current + 1
	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		key, value, next, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("writing %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		if isBusy(err) {
			return 0, shop.ErrVersionConflict
		}
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return next, nil
}

func (s *SQLiteBackend) Delete(key string) error {
	if _, err := s.db.ExecContext(context.Background(), "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteBackend) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp applies any pending schema migrations.
func (s *SQLiteBackend) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteBackend) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteBackend) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteBackend implements shop.Backend
var _ shop.Backend = (*SQLiteBackend)(nil)
