package shop

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

const (
	backupPrefix     = "shoplist-backup-"
	backupExt        = ".json"
	encryptedExt     = ".age"
	backupTimeFormat = "20060102T150405Z"
)

// Backup exports every collection to dest and returns the backup's name.
// When enc is non-nil the snapshot is encrypted and the name ends in ".age".
func (s *Store) Backup(dest BackupDestination, enc Encryptor) (string, error) {
	var plain bytes.Buffer
	if err := s.ExportJSON(&plain); err != nil {
		return "", fmt.Errorf("exporting snapshot: %w", err)
	}

	name := backupPrefix + s.clock.Now().UTC().Format(backupTimeFormat) + backupExt
	payload := &plain
	if enc != nil {
		var sealed bytes.Buffer
		if err := enc.Encrypt(&plain, &sealed); err != nil {
			return "", fmt.Errorf("encrypting backup: %w", err)
		}
		payload = &sealed
		name += encryptedExt
	}

	size := int64(payload.Len())
	if err := dest.Put(name, payload, size); err != nil {
		return "", fmt.Errorf("storing backup %s: %w", name, err)
	}

	s.logger.Info("backup stored", "name", name, "size", size, "encrypted", enc != nil)
	return name, nil
}

// ListBackups returns the backups in dest, newest first.
func (s *Store) ListBackups(dest BackupDestination) ([]string, error) {
	names, err := dest.List()
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, backupPrefix) {
			out = append(out, n)
		}
	}
	// The timestamp format sorts lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

// Restore reads the named backup from dest and imports it. Encrypted
// backups require enc; without it Restore returns ErrEncryptedBackup.
func (s *Store) Restore(dest BackupDestination, name string, enc Encryptor) error {
	var raw bytes.Buffer
	if err := dest.Get(name, &raw); err != nil {
		return fmt.Errorf("fetching backup %s: %w", name, err)
	}

	payload := &raw
	if IsEncryptedBackup(name) {
		if enc == nil {
			return fmt.Errorf("restoring %s: %w", name, ErrEncryptedBackup)
		}
		var plain bytes.Buffer
		if err := enc.Decrypt(&raw, &plain); err != nil {
			return fmt.Errorf("decrypting backup %s: %w", name, err)
		}
		payload = &plain
	}

	if err := s.ImportJSON(payload); err != nil {
		return fmt.Errorf("restoring %s: %w", name, err)
	}
	s.logger.Info("backup restored", "name", name)
	return nil
}

// IsEncryptedBackup reports whether a backup name denotes encrypted content.
func IsEncryptedBackup(name string) bool {
	return strings.HasSuffix(name, encryptedExt)
}
