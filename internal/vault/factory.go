// Package vault provides the places backups are kept: process memory, a
// local directory and S3.
package vault

import (
	"context"
	"fmt"
	"path/filepath"

	"shoplist/internal/config"
	"shoplist/internal/shop"
)

// NewVaultFromConfig creates a BackupDestination based on the backup config type.
// An empty type means backups are not configured and returns (nil, nil).
func NewVaultFromConfig(cfg config.BackupConfig) (shop.BackupDestination, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "memory":
		return NewMemoryVault(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem vault requires fs_root to be set")
		}
		return NewFileSystemVault(cfg.FSRoot)
	case "s3":
		return NewS3Vault(context.Background(), S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			UsePathStyle:    cfg.S3UsePathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown backup type: %s", cfg.Type)
	}
}

// checkName rejects names that would escape the vault root.
func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}
