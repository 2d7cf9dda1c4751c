package kv

import (
	"encoding/binary"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"shoplist/internal/shop"
)

// versionPrefixLen is the size of the big-endian version stamp stored in
// front of every badger value.
const versionPrefixLen = 8

// BadgerBackend stores values in an embedded BadgerDB. Version checks run
// inside a read-write transaction, so badger's own conflict detection
// covers concurrent writers in the same process.
type BadgerBackend struct {
	db *badger.DB
}

// NewBadgerBackend opens a badger database in dir. An empty dir or
// ":memory:" opens an ephemeral in-memory database.
func NewBadgerBackend(dir string, logger shop.Logger) (*BadgerBackend, error) {
	var opts badger.Options
	if dir == "" || dir == ":memory:" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLoggingLevel(badger.WARNING).WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

func (b *BadgerBackend) Get(key string) ([]byte, int64, error) {
	var value []byte
	var version int64
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		value, version, err = readVersioned(txn, key)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, version, nil
}

func (b *BadgerBackend) Put(key string, value []byte, ifVersion int64) (int64, error) {
	var next int64
	err := b.db.Update(func(txn *badger.Txn) error {
		_, current, err := readVersioned(txn, key)
		if err != nil {
			return err
		}
		if ifVersion != shop.AnyVersion && ifVersion != current {
			return shop.ErrVersionConflict
		}

		next = current + 1
		buf := make([]byte, versionPrefixLen+len(value))
		binary.BigEndian.PutUint64(buf, uint64(next))
		copy(buf[versionPrefixLen:], value)
		return txn.Set([]byte(key), buf)
	})
	if errors.Is(err, badger.ErrConflict) {
		return 0, shop.ErrVersionConflict
	}
	if err != nil {
		if errors.Is(err, shop.ErrVersionConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("writing %s: %w", key, err)
	}
	return next, nil
}

func (b *BadgerBackend) Delete(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}

// readVersioned returns a nil value and version 0 for a missing key.
func readVersioned(txn *badger.Txn, key string) ([]byte, int64, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, 0, err
	}
	if len(raw) < versionPrefixLen {
		return nil, 0, fmt.Errorf("value for %s is missing its version stamp", key)
	}
	version := int64(binary.BigEndian.Uint64(raw[:versionPrefixLen]))
	return raw[versionPrefixLen:], version, nil
}

// badgerLogger routes badger's printf-style logging through the shop logger.
type badgerLogger struct {
	logger shop.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
	}
}

func (l badgerLogger) Warningf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
	}
}

func (l badgerLogger) Infof(format string, args ...any) {
	if l.logger != nil {
		l.logger.Info(fmt.Sprintf(format, args...), "component", "badger")
	}
}

func (l badgerLogger) Debugf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
	}
}

// Compile-time checks
var (
	_ shop.Backend  = (*BadgerBackend)(nil)
	_ badger.Logger = badgerLogger{}
)
