package app

import (
	"fmt"
	"os"
	"path/filepath"

	"shoplist/internal/config"
)

// Environment variables consulted by GetDefaults.
const (
	EnvConfigPath  = "SHOPLIST_CONFIG_PATH"
	EnvHome        = "SHOPLIST_HOME"
	EnvStorageType = "SHOPLIST_STORAGE"
)

// storageTypes are the values accepted in SHOPLIST_STORAGE. The in-memory
// backend is left out: a config that forgets everything on exit is only
// useful in tests.
var storageTypes = map[string]bool{
	"filesystem": true,
	"sqlite":     true,
	"badger":     true,
}

// Defaults are the locations a fresh installation uses.
type Defaults struct {
	ConfigPath  string // SHOPLIST_CONFIG_PATH, else ~/.config/shoplist.toml
	BaseDir     string // SHOPLIST_HOME, else ~/.local/share/shoplist
	LogDir      string // <base>/log
	DataDir     string // <base>/data, where the collections are stored
	BackupDir   string // <base>/backups, the filesystem backup destination
	StorageType string // SHOPLIST_STORAGE, else sqlite
}

// GetDefaults resolves the default paths and storage type from the
// environment, falling back to the user's home directory.
func GetDefaults() (*Defaults, error) {
	home := ""
	if os.Getenv(EnvConfigPath) == "" || os.Getenv(EnvHome) == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		home = h
	}

	configPath := os.Getenv(EnvConfigPath)
	if configPath == "" {
		configPath = filepath.Join(home, ".config", "shoplist.toml")
	}
	baseDir := os.Getenv(EnvHome)
	if baseDir == "" {
		baseDir = filepath.Join(home, ".local", "share", "shoplist")
	}

	storage := os.Getenv(EnvStorageType)
	if storage == "" {
		storage = "sqlite"
	}
	if !storageTypes[storage] {
		return nil, fmt.Errorf("%s=%q: must be filesystem, sqlite or badger", EnvStorageType, storage)
	}

	return &Defaults{
		ConfigPath:  configPath,
		BaseDir:     baseDir,
		LogDir:      filepath.Join(baseDir, "log"),
		DataDir:     filepath.Join(baseDir, "data"),
		BackupDir:   filepath.Join(baseDir, "backups"),
		StorageType: storage,
	}, nil
}

// NewConfig builds the config `shoplist config init` writes: the chosen
// local storage under DataDir, filesystem backups under BackupDir and age
// encryption.
func (d *Defaults) NewConfig() *config.Config {
	cfg := config.NewConfig(d.BaseDir)
	cfg.LogDir = d.LogDir
	cfg.Storage = config.StorageConfig{Type: d.StorageType, DataDir: d.DataDir}
	cfg.Backup = config.BackupConfig{Type: "filesystem", FSRoot: d.BackupDir}
	return cfg
}
