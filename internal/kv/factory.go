// Package kv provides the shop.Backend implementations that do not need a
// schema: an in-memory map, plain files, BadgerDB and Redis.
package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shoplist/internal/config"
	"shoplist/internal/database"
	"shoplist/internal/shop"
)

// sqliteFileName is the database file created under storage.data_dir.
const sqliteFileName = "shoplist.db"

// NewBackendFromConfig creates a Backend implementation based on the storage config type.
// A sqlite backend is returned unmigrated; the caller checks or applies migrations.
func NewBackendFromConfig(cfg config.StorageConfig, logger shop.Logger) (shop.Backend, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryBackend(), nil
	case "filesystem":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for filesystem storage")
		}
		return NewFileSystemBackend(cfg.DataDir)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite storage")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return database.NewSQLiteBackend(filepath.Join(cfg.DataDir, sqliteFileName))
	case "badger":
		if cfg.InMemory {
			return NewBadgerBackend("", logger)
		}
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir or in_memory required for badger storage")
		}
		return NewBadgerBackend(filepath.Join(cfg.DataDir, "badger"), logger)
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return NewRedisBackend(ctx, RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
