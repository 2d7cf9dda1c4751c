package shop

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"shoplist/internal/model"
)

// GetSettings returns the current settings.
func (s *Store) GetSettings() (model.Settings, error) {
	settings, _, err := s.loadSettings()
	return settings, err
}

// UpdateSettings merges patch into the current settings. Keys not in patch,
// including unrecognized ones, are preserved.
func (s *Store) UpdateSettings(patch model.Settings) (model.Settings, error) {
	current, version, err := s.loadSettings()
	if err != nil {
		return nil, err
	}
	updated := current.Merge(patch)
	if err := s.save(KeySettings, updated, version); err != nil {
		return nil, fmt.Errorf("updating settings: %w", err)
	}
	s.logger.Info("settings updated", "keys", len(patch))
	return updated, nil
}

// ExportData returns a snapshot of every collection.
func (s *Store) ExportData() (*model.Snapshot, error) {
	products, err := s.GetProducts()
	if err != nil {
		return nil, fmt.Errorf("exporting: %w", err)
	}
	lists, err := s.GetShoppingLists()
	if err != nil {
		return nil, fmt.Errorf("exporting: %w", err)
	}
	history, err := s.GetPurchaseHistory()
	if err != nil {
		return nil, fmt.Errorf("exporting: %w", err)
	}
	settings, err := s.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("exporting: %w", err)
	}
	return &model.Snapshot{
		Products:        &products,
		ShoppingLists:   &lists,
		PurchaseHistory: &history,
		Settings:        settings,
		ExportDate:      s.clock.Now(),
	}, nil
}

// ImportData replaces each collection present in snap and leaves absent ones
// untouched. All present collections are validated first; if any fails,
// nothing is written.
func (s *Store) ImportData(snap *model.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: empty snapshot", ErrInvalidInput)
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	type write struct {
		key   string
		value any
	}
	var writes []write
	if snap.Products != nil {
		writes = append(writes, write{KeyProducts, *snap.Products})
	}
	if snap.ShoppingLists != nil {
		lists := make([]model.ShoppingList, len(*snap.ShoppingLists))
		copy(lists, *snap.ShoppingLists)
		for i := range lists {
			if lists[i].Items == nil {
				lists[i].Items = []model.ListItem{}
			}
			lists[i].Total = Total(lists[i].Items)
		}
		writes = append(writes, write{KeyShoppingLists, lists})
	}
	if snap.PurchaseHistory != nil {
		writes = append(writes, write{KeyPurchaseHistory, *snap.PurchaseHistory})
	}
	if snap.Settings != nil {
		writes = append(writes, write{KeySettings, snap.Settings})
	}

	for _, w := range writes {
		if err := s.save(w.key, w.value, AnyVersion); err != nil {
			return fmt.Errorf("importing: %w", err)
		}
	}

	s.logger.Info("data imported", "collections", len(writes))
	return nil
}

// ClearAllData resets all four keys to their empty collections and default
// settings. Each key is overwritten at the version just read rather than
// deleted, so its version keeps increasing and a writer holding a version
// from before the clear still gets ErrVersionConflict.
func (s *Store) ClearAllData() error {
	for _, key := range AllKeys {
		_, version, err := s.backend.Get(key)
		if err != nil {
			return fmt.Errorf("clearing %s: %w", key, err)
		}
		if err := s.save(key, emptyValue(key), version); err != nil {
			return fmt.Errorf("clearing %s: %w", key, err)
		}
	}
	s.logger.Info("all data cleared")
	return nil
}

// ExportJSON writes an indented export snapshot to w.
func (s *Store) ExportJSON(w io.Writer) error {
	snap, err := s.ExportData()
	if err != nil {
		return err
	}
	return writeIndentedJSON(w, snap)
}

// ImportJSON decodes a snapshot from r and imports it. Decoding errors are
// reported as ErrInvalidInput.
func (s *Store) ImportJSON(r io.Reader) error {
	var snap model.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("%w: decoding snapshot: %v", ErrInvalidInput, err)
	}
	return s.ImportData(&snap)
}

// ExportHistoryJSON writes purchases as an indented JSON array.
func ExportHistoryJSON(w io.Writer, purchases []model.Purchase) error {
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	return writeIndentedJSON(w, purchases)
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func validateSnapshot(snap *model.Snapshot) error {
	var errs []error
	if snap.Products != nil {
		for i := range *snap.Products {
			if err := validateStruct(&(*snap.Products)[i]); err != nil {
				errs = append(errs, fmt.Errorf("products[%d]: %w", i, err))
			}
		}
	}
	if snap.ShoppingLists != nil {
		for i := range *snap.ShoppingLists {
			if err := validateStruct(&(*snap.ShoppingLists)[i]); err != nil {
				errs = append(errs, fmt.Errorf("shoppingLists[%d]: %w", i, err))
			}
		}
	}
	if snap.PurchaseHistory != nil {
		for i := range *snap.PurchaseHistory {
			if err := validateStruct(&(*snap.PurchaseHistory)[i]); err != nil {
				errs = append(errs, fmt.Errorf("purchaseHistory[%d]: %w", i, err))
			}
		}
	}
	return errors.Join(errs...)
}
