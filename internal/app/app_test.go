package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"shoplist/internal/config"
	"shoplist/internal/model"
	"shoplist/internal/shop"
)

// newTestConfig returns an in-memory config with a memory backup
// destination and the test encryptor, logging under a temp dir.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	return &config.Config{
		BaseDir:    base,
		LogDir:     filepath.Join(base, "log"),
		Storage:    config.StorageConfig{Type: "memory"},
		Backup:     config.BackupConfig{Type: "memory"},
		Encryption: config.EncryptionConfig{Type: "test"},
		Locale:     config.LocaleConfig{Timezone: "UTC"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *ShopApp {
	t.Helper()

	a, err := NewShopApp(cfg, "Test")
	if err != nil {
		t.Fatalf("NewShopApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "12.90", want: "12.9"},
		{raw: "12,90", want: "12.9"},
		{raw: " 3 ", want: "3"},
		{raw: "", want: "0"},
		{raw: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePrice(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrice(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, shop.ErrInvalidInput) {
					t.Errorf("error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if got.String() != tt.want {
				t.Errorf("ParsePrice(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestShopApp_ShoppingFlow(t *testing.T) {
	a := newTestApp(t, newTestConfig(t))

	p, err := a.AddProduct("Coffee", "Drinks", "10,00", "A")
	if err != nil {
		t.Fatalf("AddProduct() error = %v", err)
	}

	if _, err := a.ResolveList(""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ResolveList(\"\") with no lists error = %v, want ErrNotFound", err)
	}
	list, err := a.Store().CreateShoppingList("")
	if err != nil {
		t.Fatal(err)
	}

	_, item, err := a.AddItem("", ItemRequest{ProductID: p.ID, RawPrice: "8"})
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if item.Name != "Coffee" || item.Category != "Drinks" || !item.Price.Equal(mustPrice(t, "8")) {
		t.Errorf("item not filled from product: %+v", item)
	}
	if _, _, err := a.AddItem(list.ID, ItemRequest{ProductID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddItem(unknown product) error = %v, want ErrNotFound", err)
	}

	if _, err := a.SavePurchase("", "B"); !errors.Is(err, shop.ErrNothingToPurchase) {
		t.Errorf("SavePurchase() with nothing checked error = %v", err)
	}
	if _, err := a.ToggleItem("", item.ID); err != nil {
		t.Fatalf("ToggleItem() error = %v", err)
	}
	purchase, err := a.SavePurchase(list.ID, "B")
	if err != nil {
		t.Fatalf("SavePurchase() error = %v", err)
	}
	if !purchase.Total.Equal(mustPrice(t, "8")) {
		t.Errorf("purchase total = %s, want 8", purchase.Total)
	}

	comps, err := a.Comparisons(shop.ComparisonFilter{Trend: model.TrendDecrease}, shop.SortByPercentage)
	if err != nil {
		t.Fatal(err)
	}
	if len(comps) != 1 || !comps[0].PercentageChange.Equal(mustPrice(t, "-20")) {
		t.Errorf("comparisons = %+v, want one -20%% decrease", comps)
	}

	now := time.Now().UTC()
	spent, err := a.MonthlySpending(now.Year(), int(now.Month()))
	if err != nil {
		t.Fatal(err)
	}
	if !spent.Equal(mustPrice(t, "8")) {
		t.Errorf("MonthlySpending() = %s, want 8", spent)
	}
	if _, err := a.MonthlySpending(2024, 13); !errors.Is(err, shop.ErrInvalidInput) {
		t.Errorf("MonthlySpending(month 13) error = %v, want ErrInvalidInput", err)
	}

	history, err := a.History(shop.HistoryFilter{Query: "coffee"})
	if err != nil || len(history) != 1 {
		t.Errorf("History() = (%d, %v), want 1 purchase", len(history), err)
	}
}

func TestShopApp_ItemErrors(t *testing.T) {
	a := newTestApp(t, newTestConfig(t))
	list, _ := a.Store().CreateShoppingList("Weekly")

	if _, err := a.ToggleItem(list.ID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ToggleItem() error = %v, want ErrNotFound", err)
	}
	name := "x"
	if _, err := a.UpdateItem(list.ID, "nope", shop.ItemPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateItem() error = %v, want ErrNotFound", err)
	}
	if err := a.RemoveItem("nope", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveItem() error = %v, want ErrNotFound", err)
	}
	if _, err := a.SetListStatus(list.ID, "paused"); !errors.Is(err, shop.ErrInvalidInput) {
		t.Errorf("SetListStatus(paused) error = %v, want ErrInvalidInput", err)
	}
	got, err := a.SetListStatus(list.ID, "Completed")
	if err != nil || got.Status != model.ListCompleted {
		t.Errorf("SetListStatus(Completed) = (%+v, %v)", got, err)
	}
	if _, err := a.Product("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Product() error = %v, want ErrNotFound", err)
	}
}

func TestShopApp_UpdateSettings(t *testing.T) {
	a := newTestApp(t, newTestConfig(t))

	got, err := a.UpdateSettings([]string{"theme=dark", "notifications=false", "language=pt-BR"})
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if got.Theme() != "dark" || got.Notifications() || got["language"] != "pt-BR" || got.Currency() != "R$" {
		t.Errorf("settings = %v", got)
	}

	if _, err := a.UpdateSettings([]string{"novalue"}); !errors.Is(err, shop.ErrInvalidInput) {
		t.Errorf("UpdateSettings(novalue) error = %v, want ErrInvalidInput", err)
	}
}

func TestShopApp_ExportImportFiles(t *testing.T) {
	cfg := newTestConfig(t)
	a := newTestApp(t, cfg)
	if _, err := a.AddProduct("Rice", "Grains", "24.90", "A"); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "export.json")
	if err := a.ExportToFile(path); err != nil {
		t.Fatalf("ExportToFile() error = %v", err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("export dir has %d entries, want only the export", len(entries))
	}

	b := newTestApp(t, newTestConfig(t))
	if err := b.ImportFromFile(path); err != nil {
		t.Fatalf("ImportFromFile() error = %v", err)
	}
	products, _ := b.Store().GetProducts()
	if len(products) != 1 || products[0].Name != "Rice" {
		t.Errorf("imported products = %+v", products)
	}

	if err := b.ImportFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportFromFile() of a missing file should fail")
	}

	n, err := b.ExportHistoryToFile(filepath.Join(t.TempDir(), "history.json"), shop.HistoryFilter{})
	if err != nil || n != 0 {
		t.Errorf("ExportHistoryToFile() = (%d, %v), want (0, nil)", n, err)
	}

	if err := b.ClearAllData(); err != nil {
		t.Fatal(err)
	}
	products, _ = b.Store().GetProducts()
	if len(products) != 0 {
		t.Errorf("after clear: %d products", len(products))
	}
}

func TestShopApp_Backups(t *testing.T) {
	a := newTestApp(t, newTestConfig(t))
	if _, err := a.AddProduct("Milk", "", "4.50", ""); err != nil {
		t.Fatal(err)
	}

	plain, err := a.BackupPush(false)
	if err != nil {
		t.Fatalf("BackupPush(false) error = %v", err)
	}
	if shop.IsEncryptedBackup(plain) {
		t.Errorf("plain backup name %q looks encrypted", plain)
	}

	// A second push in the same second would collide with the first name.
	time.Sleep(1100 * time.Millisecond)
	sealed, err := a.BackupPush(true)
	if err != nil {
		t.Fatalf("BackupPush(true) error = %v", err)
	}
	if !shop.IsEncryptedBackup(sealed) {
		t.Errorf("encrypted backup name %q", sealed)
	}

	names, err := a.BackupList()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != sealed {
		t.Errorf("BackupList() = %v, want newest first", names)
	}

	if err := a.ClearAllData(); err != nil {
		t.Fatal(err)
	}
	if err := a.BackupRestore(sealed); err != nil {
		t.Fatalf("BackupRestore() error = %v", err)
	}
	products, _ := a.Store().GetProducts()
	if len(products) != 1 || products[0].Name != "Milk" {
		t.Errorf("restored products = %+v", products)
	}
}

func TestShopApp_AgePassphrase(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Encryption.Type = "age"
	a := newTestApp(t, cfg)

	a.SetPassphraseFunc(func() (string, error) { return "", errors.New("no tty") })
	if _, err := a.BackupPush(true); err == nil || !strings.Contains(err.Error(), "no tty") {
		t.Errorf("BackupPush(true) error = %v, want passphrase failure", err)
	}

	calls := 0
	a.SetPassphraseFunc(func() (string, error) { calls++; return "secret", nil })
	if _, err := a.BackupPush(false); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("plain backup asked for the passphrase %d times", calls)
	}
}

func TestShopApp_NoBackupDestination(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Backup = config.BackupConfig{}
	a := newTestApp(t, cfg)

	if _, err := a.BackupPush(false); !errors.Is(err, ErrNoBackupDestination) {
		t.Errorf("BackupPush() error = %v, want ErrNoBackupDestination", err)
	}
	if _, err := a.BackupList(); !errors.Is(err, ErrNoBackupDestination) {
		t.Errorf("BackupList() error = %v, want ErrNoBackupDestination", err)
	}
	if err := a.BackupRestore("x.json"); !errors.Is(err, ErrNoBackupDestination) {
		t.Errorf("BackupRestore() error = %v, want ErrNoBackupDestination", err)
	}
}

func TestNewShopApp_SQLiteRequiresMigration(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Storage = config.StorageConfig{Type: "sqlite", DataDir: filepath.Join(cfg.BaseDir, "data")}

	if _, err := NewShopApp(cfg, "Test"); err == nil {
		t.Fatal("NewShopApp() on an unmigrated database should fail")
	}

	if err := MigrateDatabase(cfg); err != nil {
		t.Fatalf("MigrateDatabase() error = %v", err)
	}
	if err := MigrateDatabase(cfg); err != nil {
		t.Fatalf("MigrateDatabase() second run error = %v", err)
	}

	a, err := NewShopApp(cfg, "Test")
	if err != nil {
		t.Fatalf("NewShopApp() after migrate error = %v", err)
	}
	if _, err := a.AddProduct("Beans", "", "7", ""); err != nil {
		t.Fatal(err)
	}
	a.Close()

	// Data survives a new process.
	b := newTestApp(t, cfg)
	products, _ := b.Store().GetProducts()
	if len(products) != 1 {
		t.Errorf("products after reopen = %d, want 1", len(products))
	}
}

func TestCopyDatabase(t *testing.T) {
	cfg := newTestConfig(t)
	if err := CopyDatabase(cfg, filepath.Join(t.TempDir(), "copy.db")); !errors.Is(err, ErrCopyUnsupported) {
		t.Errorf("CopyDatabase() on memory storage error = %v, want ErrCopyUnsupported", err)
	}

	cfg.Storage = config.StorageConfig{Type: "sqlite", DataDir: filepath.Join(cfg.BaseDir, "data")}
	if err := MigrateDatabase(cfg); err != nil {
		t.Fatal(err)
	}
	a := newTestApp(t, cfg)
	if _, err := a.AddProduct("Rice", "", "22.50", ""); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "copy.db")
	if err := CopyDatabase(cfg, dest); err != nil {
		t.Fatalf("CopyDatabase() error = %v", err)
	}

	copyCfg := newTestConfig(t)
	copyCfg.Storage = config.StorageConfig{Type: "sqlite", DataDir: filepath.Dir(dest)}
	if err := os.Rename(dest, filepath.Join(filepath.Dir(dest), "shoplist.db")); err != nil {
		t.Fatal(err)
	}
	b := newTestApp(t, copyCfg)
	products, err := b.Store().GetProducts()
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].Name != "Rice" {
		t.Errorf("products in copy = %+v, want Rice", products)
	}
}

func TestMigrateDatabase_NoSchema(t *testing.T) {
	if err := MigrateDatabase(newTestConfig(t)); err != nil {
		t.Errorf("MigrateDatabase() on memory storage error = %v", err)
	}
}

func TestNewShopApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{name: "unknown storage", modify: func(c *config.Config) { c.Storage.Type = "floppy" }},
		{name: "unknown timezone", modify: func(c *config.Config) { c.Locale.Timezone = "Mars/Olympus" }},
		{name: "unknown backup", modify: func(c *config.Config) { c.Backup.Type = "tape" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			tt.modify(cfg)
			if _, err := NewShopApp(cfg, "Test"); err == nil {
				t.Error("NewShopApp() should fail")
			}
		})
	}
}

func TestShopApp_CloseLogsOperation(t *testing.T) {
	cfg := newTestConfig(t)
	a, err := NewShopApp(cfg, "AddProduct")
	if err != nil {
		t.Fatal(err)
	}
	a.Fail(errors.New("bad price"))
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.LogDir, "shoplist.log"))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	for _, want := range []string{"operation finished", "command=AddProduct", "status=error", `error="bad price"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log %q missing %s", line, want)
		}
	}
}

func mustPrice(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	d, err := ParsePrice(raw)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
