package shop

import "errors"

var (
	// ErrVersionConflict is returned when a collection changed between the
	// read and the write of a mutation, e.g. by another process.
	ErrVersionConflict = errors.New("collection was modified concurrently")

	// ErrInvalidInput wraps validation failures on inputs and imports.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNothingToPurchase is returned when a purchase is saved from a list
	// with no checked items.
	ErrNothingToPurchase = errors.New("no checked items to purchase")

	// ErrEncryptedBackup is returned when restoring an encrypted backup
	// without an encryptor.
	ErrEncryptedBackup = errors.New("backup is encrypted")

	// ErrBackupNotFound is returned by a BackupDestination for an unknown name.
	ErrBackupNotFound = errors.New("backup not found")
)
