package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shoplist/internal/config"
	"shoplist/internal/encryption"
	"shoplist/internal/kv"
	"shoplist/internal/model"
	"shoplist/internal/shop"
	"shoplist/internal/vault"
)

// ErrNotFound is returned when a product, list or item named on the command
// line does not exist.
var ErrNotFound = errors.New("not found")

// ErrNoBackupDestination is returned by backup commands when no destination
// is configured.
var ErrNoBackupDestination = errors.New("no backup destination configured")

// migrator is implemented by backends with a schema.
type migrator interface {
	CheckMigrations() error
	MigrateUp() error
}

// ShopApp is the application layer between the CLI and the Store.
// It constructs all dependencies from config, exposes operations that accept
// raw command-line values, and releases the backend on Close.
type ShopApp struct {
	cfg        *config.Config
	backend    shop.Backend
	dest       shop.BackupDestination
	store      *shop.Store
	loc        *time.Location
	op         *Operation
	logger     *slog.Logger
	logFile    *os.File
	passphrase PassphraseFunc
}

// NewShopApp creates a fully wired ShopApp from the given config.
// operation identifies the CLI command being run (e.g. "AddProduct", "SavePurchase").
// The caller must call Close when done.
func NewShopApp(cfg *config.Config, operation string) (*ShopApp, error) {
	loc, err := cfg.Locale.Location()
	if err != nil {
		return nil, err
	}

	op := NewOperation(operation, time.Now())
	logger, logFile, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapter := &slogAdapter{l: logger}

	backend, err := kv.NewBackendFromConfig(cfg.Storage, adapter)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating backend: %w", err)
	}

	if m, ok := backend.(migrator); ok {
		if err := m.CheckMigrations(); err != nil {
			backend.Close()
			logFile.Close()
			return nil, fmt.Errorf("database schema out of date (run `shoplist db migrate`): %w", err)
		}
	}

	dest, err := vault.NewVaultFromConfig(cfg.Backup)
	if err != nil {
		backend.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating backup destination: %w", err)
	}

	store, err := shop.NewStore(backend, adapter, shop.RealClock{}, shop.UUIDGenerator{})
	if err != nil {
		backend.Close()
		logFile.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}

	logger.Debug("operation started", "command", op.Command, "storage", cfg.Storage.Type)

	return &ShopApp{
		cfg:        cfg,
		backend:    backend,
		dest:       dest,
		store:      store,
		loc:        loc,
		op:         op,
		logger:     logger,
		logFile:    logFile,
		passphrase: PassphraseFromEnvOrTerminal,
	}, nil
}

// MigrateDatabase applies pending schema migrations to the configured
// storage. Backends without a schema need none.
func MigrateDatabase(cfg *config.Config) error {
	backend, err := kv.NewBackendFromConfig(cfg.Storage, nil)
	if err != nil {
		return fmt.Errorf("creating backend: %w", err)
	}
	defer backend.Close()

	m, ok := backend.(migrator)
	if !ok {
		return nil
	}
	if err := m.MigrateUp(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

// copier is implemented by backends that can write a consistent copy of
// their storage to a file.
type copier interface {
	BackupTo(destPath string) error
}

// ErrCopyUnsupported is returned by CopyDatabase for backends without a
// single database file.
var ErrCopyUnsupported = errors.New("storage backend cannot be copied to a file")

// CopyDatabase writes a consistent copy of the configured storage to
// destPath. Only the sqlite backend supports this.
func CopyDatabase(cfg *config.Config, destPath string) error {
	backend, err := kv.NewBackendFromConfig(cfg.Storage, nil)
	if err != nil {
		return fmt.Errorf("creating backend: %w", err)
	}
	defer backend.Close()

	c, ok := backend.(copier)
	if !ok {
		return fmt.Errorf("%s: %w", cfg.Storage.Type, ErrCopyUnsupported)
	}
	return c.BackupTo(destPath)
}

// SetPassphraseFunc replaces the source of the backup passphrase.
func (a *ShopApp) SetPassphraseFunc(fn PassphraseFunc) {
	a.passphrase = fn
}

// Store exposes the underlying store for read-only commands.
func (a *ShopApp) Store() *shop.Store { return a.store }

// Location is the zone used for month bucketing.
func (a *ShopApp) Location() *time.Location { return a.loc }

// Fail marks the current operation as failed.
func (a *ShopApp) Fail(err error) {
	a.op.Fail(err)
}

// ParsePrice parses a price such as "12.90" or "12,90". An empty string is zero.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid price %q", shop.ErrInvalidInput, raw)
	}
	return d, nil
}

// AddProduct registers a product with its first observed price.
func (a *ShopApp) AddProduct(name, category, rawPrice, store string) (*model.Product, error) {
	price, err := ParsePrice(rawPrice)
	if err != nil {
		return nil, err
	}
	return a.store.AddProduct(shop.ProductInput{
		Name:     name,
		Category: category,
		Price:    price,
		Store:    store,
	})
}

// Product returns the product with id or ErrNotFound.
func (a *ShopApp) Product(id string) (*model.Product, error) {
	p, err := a.store.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// UpdateProduct edits a product's name or category.
func (a *ShopApp) UpdateProduct(id string, patch shop.ProductPatch) (*model.Product, error) {
	p, err := a.store.UpdateProduct(id, patch)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// ResolveList returns the list with id, or the active list when id is empty.
func (a *ShopApp) ResolveList(id string) (*model.ShoppingList, error) {
	var (
		list *model.ShoppingList
		err  error
	)
	if id == "" {
		list, err = a.store.ActiveList()
	} else {
		list, err = a.store.GetShoppingList(id)
	}
	if err != nil {
		return nil, err
	}
	if list == nil {
		if id == "" {
			return nil, fmt.Errorf("no shopping lists (create one with `shoplist list create`): %w", ErrNotFound)
		}
		return nil, fmt.Errorf("shopping list %s: %w", id, ErrNotFound)
	}
	return list, nil
}

// ItemRequest is an item as given on the command line. When ProductID is
// set, empty fields are filled from the product.
type ItemRequest struct {
	ProductID string
	Name      string
	Quantity  int
	RawPrice  string
	Category  string
}

// AddItem appends an item to the list named by listID (the active list if
// empty).
func (a *ShopApp) AddItem(listID string, req ItemRequest) (*model.ShoppingList, *model.ListItem, error) {
	list, err := a.ResolveList(listID)
	if err != nil {
		return nil, nil, err
	}

	in := shop.ItemInput{
		Name:     req.Name,
		Quantity: req.Quantity,
		Category: req.Category,
	}
	if strings.TrimSpace(req.RawPrice) != "" {
		if in.Price, err = ParsePrice(req.RawPrice); err != nil {
			return nil, nil, err
		}
	}

	if req.ProductID != "" {
		p, err := a.Product(req.ProductID)
		if err != nil {
			return nil, nil, err
		}
		in.ProductID = &p.ID
		if strings.TrimSpace(in.Name) == "" {
			in.Name = p.Name
		}
		if in.Category == "" {
			in.Category = p.Category
		}
		if strings.TrimSpace(req.RawPrice) == "" {
			in.Price = p.LastPrice
		}
	}

	item, err := a.store.AddItemToList(list.ID, in)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, fmt.Errorf("shopping list %s: %w", list.ID, ErrNotFound)
	}
	return list, item, nil
}

// UpdateItem applies patch to an item of the list named by listID.
func (a *ShopApp) UpdateItem(listID, itemID string, patch shop.ItemPatch) (*model.ListItem, error) {
	list, err := a.ResolveList(listID)
	if err != nil {
		return nil, err
	}
	item, err := a.store.UpdateListItem(list.ID, itemID, patch)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s on list %s: %w", itemID, list.ID, ErrNotFound)
	}
	return item, nil
}

// ToggleItem flips the checked state of an item.
func (a *ShopApp) ToggleItem(listID, itemID string) (*model.ListItem, error) {
	list, err := a.ResolveList(listID)
	if err != nil {
		return nil, err
	}
	item, err := a.store.ToggleItemCheck(list.ID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s on list %s: %w", itemID, list.ID, ErrNotFound)
	}
	return item, nil
}

// RemoveItem drops an item from the list named by listID.
func (a *ShopApp) RemoveItem(listID, itemID string) error {
	list, err := a.ResolveList(listID)
	if err != nil {
		return err
	}
	ok, err := a.store.RemoveItemFromList(list.ID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("shopping list %s: %w", list.ID, ErrNotFound)
	}
	return nil
}

// SetListStatus moves a list to a new lifecycle state.
func (a *ShopApp) SetListStatus(listID, status string) (*model.ShoppingList, error) {
	s := model.ListStatus(strings.ToLower(strings.TrimSpace(status)))
	list, err := a.store.UpdateShoppingList(listID, shop.ListPatch{Status: &s})
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("shopping list %s: %w", listID, ErrNotFound)
	}
	return list, nil
}

// SavePurchase records the checked items of the list named by listID.
func (a *ShopApp) SavePurchase(listID, store string) (*model.Purchase, error) {
	list, err := a.ResolveList(listID)
	if err != nil {
		return nil, err
	}
	return a.store.SavePurchase(*list, store)
}

// History returns the purchases matching f.
func (a *ShopApp) History(f shop.HistoryFilter) ([]model.Purchase, error) {
	history, err := a.store.GetPurchaseHistory()
	if err != nil {
		return nil, err
	}
	return shop.FilterHistory(history, f, a.loc), nil
}

// Comparisons returns every price comparison narrowed by f and sorted by sortBy.
func (a *ShopApp) Comparisons(f shop.ComparisonFilter, sortBy string) ([]model.PriceComparison, error) {
	comps, err := a.store.AllComparisons()
	if err != nil {
		return nil, err
	}
	return shop.SortComparisons(shop.FilterComparisons(comps, f), sortBy), nil
}

// MonthlySpending totals the purchases of year and month in the configured zone.
func (a *ShopApp) MonthlySpending(year, month int) (decimal.Decimal, error) {
	if month < shop.AllMonths || month > 12 {
		return decimal.Zero, fmt.Errorf("%w: month must be 1-12", shop.ErrInvalidInput)
	}
	history, err := a.store.GetPurchaseHistory()
	if err != nil {
		return decimal.Zero, err
	}
	return shop.MonthlySpending(history, year, month, a.loc), nil
}

// UpdateSettings parses KEY=VALUE pairs and merges them into the settings.
// "true" and "false" become booleans; everything else stays a string.
func (a *ShopApp) UpdateSettings(pairs []string) (model.Settings, error) {
	patch := model.Settings{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: expected KEY=VALUE, got %q", shop.ErrInvalidInput, pair)
		}
		switch value {
		case "true":
			patch[key] = true
		case "false":
			patch[key] = false
		default:
			patch[key] = value
		}
	}
	return a.store.UpdateSettings(patch)
}

// ExportToFile writes a snapshot of all data to path.
func (a *ShopApp) ExportToFile(path string) error {
	return writeFile(path, a.store.ExportJSON)
}

// ImportFromFile imports a snapshot previously written by ExportToFile.
func (a *ShopApp) ImportFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return a.store.ImportJSON(f)
}

// ExportHistoryToFile writes the purchases matching f to path.
func (a *ShopApp) ExportHistoryToFile(path string, f shop.HistoryFilter) (int, error) {
	history, err := a.History(f)
	if err != nil {
		return 0, err
	}
	err = writeFile(path, func(w io.Writer) error {
		return shop.ExportHistoryJSON(w, history)
	})
	return len(history), err
}

// ClearAllData erases every collection.
func (a *ShopApp) ClearAllData() error {
	return a.store.ClearAllData()
}

// BackupPush stores an export snapshot in the configured destination.
func (a *ShopApp) BackupPush(encrypt bool) (string, error) {
	if a.dest == nil {
		return "", ErrNoBackupDestination
	}
	if err := a.dest.ValidateSetup(); err != nil {
		return "", fmt.Errorf("backup destination not usable: %w", err)
	}
	var enc shop.Encryptor
	if encrypt {
		var err error
		if enc, err = a.encryptor(); err != nil {
			return "", err
		}
	}
	return a.store.Backup(a.dest, enc)
}

// BackupList lists the stored backups, newest first.
func (a *ShopApp) BackupList() ([]string, error) {
	if a.dest == nil {
		return nil, ErrNoBackupDestination
	}
	return a.store.ListBackups(a.dest)
}

// BackupRestore imports the named backup, asking for the passphrase when
// it is encrypted.
func (a *ShopApp) BackupRestore(name string) error {
	if a.dest == nil {
		return ErrNoBackupDestination
	}
	var enc shop.Encryptor
	if shop.IsEncryptedBackup(name) {
		var err error
		if enc, err = a.encryptor(); err != nil {
			return err
		}
	}
	return a.store.Restore(a.dest, name, enc)
}

// encryptor builds the configured encryptor. The passphrase is requested
// only here, so commands that never encrypt never prompt.
func (a *ShopApp) encryptor() (shop.Encryptor, error) {
	var passphrase string
	if a.cfg.Encryption.Type != "test" {
		p, err := a.passphrase()
		if err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}
		passphrase = p
	}
	enc, err := encryption.NewEncryptorFromConfig(a.cfg.Encryption, passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	return enc, nil
}

// Close logs how the operation ended and releases the backend and log file.
func (a *ShopApp) Close() error {
	var firstErr error

	a.logOperation()

	if err := a.backend.Close(); err != nil {
		firstErr = fmt.Errorf("closing backend: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

func (a *ShopApp) logOperation() {
	args := []any{"command", a.op.Command, "status", a.op.Status, "duration", a.op.Duration(time.Now())}
	if a.op.Err != "" {
		args = append(args, "error", a.op.Err)
		a.logger.Error("operation finished", args...)
		return
	}
	a.logger.Debug("operation finished", args...)
}

// writeFile writes through fn to a temp file beside path and renames it
// into place.
func writeFile(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".shoplist-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := fn(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	success = true
	return nil
}
