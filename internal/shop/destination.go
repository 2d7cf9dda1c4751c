package shop

import "io"

// BackupDestination stores named export snapshots outside the primary
// backend. Backups are written once and never modified.
type BackupDestination interface {
	// Put stores the backup called name; size is the number of bytes that
	// will be read from r.
	Put(name string, r io.Reader, size int64) error

	// Get writes the backup called name to w.
	Get(name string, w io.Writer) error

	// List returns the names of all stored backups.
	List() ([]string, error)

	// ValidateSetup verifies the destination is reachable and writable.
	ValidateSetup() error
}
