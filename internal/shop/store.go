package shop

import (
	"encoding/json"
	"errors"
	"fmt"

	"shoplist/internal/model"
)

// Store is the repository for products, shopping lists, purchase history and
// settings. It is the only writer of persisted state and keeps no in-memory
// copy of its own: every read decodes fresh values from the backend, so
// callers may mutate what they get back freely.
//
// Each mutation is a read-modify-write of one collection guarded by the
// backend's version stamp.
type Store struct {
	backend Backend
	logger  Logger
	clock   Clock
	idgen   IDGenerator
}

// NewStore creates a Store over backend and initializes any missing keys.
func NewStore(backend Backend, logger Logger, clock Clock, idgen IDGenerator) (*Store, error) {
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	s := &Store{
		backend: backend,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Init creates each absent key with its empty collection or default
// settings. Existing values are left alone, so Init is idempotent.
func (s *Store) Init() error {
	for _, key := range AllKeys {
		data, _, err := s.backend.Get(key)
		if err != nil {
			return fmt.Errorf("checking %s: %w", key, err)
		}
		if data != nil {
			continue
		}
		if err := s.save(key, emptyValue(key), 0); err != nil {
			// Another process initialized it first.
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return fmt.Errorf("initializing %s: %w", key, err)
		}
		s.logger.Debug("initialized key", "key", key)
	}
	return nil
}

func emptyValue(key string) any {
	switch key {
	case KeySettings:
		return model.DefaultSettings()
	case KeyProducts:
		return []model.Product{}
	case KeyShoppingLists:
		return []model.ShoppingList{}
	default:
		return []model.Purchase{}
	}
}

// loadCollection decodes the JSON array stored under key. Absent or corrupt
// values decode as an empty collection; corruption is logged, not returned.
func loadCollection[T any](s *Store, key string) ([]T, int64, error) {
	data, version, err := s.backend.Get(key)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", key, err)
	}
	items := []T{}
	if data == nil {
		return items, version, nil
	}
	var decoded []T
	if err := json.Unmarshal(data, &decoded); err != nil {
		s.logger.Warn("corrupt stored value, treating as empty", "key", key, "error", err)
		return items, version, nil
	}
	if decoded != nil {
		items = decoded
	}
	return items, version, nil
}

func (s *Store) loadSettings() (model.Settings, int64, error) {
	data, version, err := s.backend.Get(KeySettings)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", KeySettings, err)
	}
	if data == nil {
		return model.DefaultSettings(), version, nil
	}
	var settings model.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		s.logger.Warn("corrupt stored value, using defaults", "key", KeySettings, "error", err)
		return model.DefaultSettings(), version, nil
	}
	if settings == nil {
		settings = model.Settings{}
	}
	return settings, version, nil
}

// save encodes v and writes it under key, requiring the stored version to
// still be version.
func (s *Store) save(key string, v any, version int64) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if _, err := s.backend.Put(key, data, version); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
