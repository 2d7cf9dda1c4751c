package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shoplist/internal/app"
	"shoplist/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := defaults.NewConfig()
		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if err := app.MigrateDatabase(cfg); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Fprintf(out, "Base Dir: %s\n", defaults.BaseDir)
		fmt.Fprintf(out, "Storage:  %s %s\n", cfg.Storage.Type, cfg.Storage.DataDir)
		fmt.Fprintf(out, "Backups:  %s\n", cfg.Backup.FSRoot)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Fprintf(out, "Base Dir:   %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:    %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Storage:    %s %s\n", cfg.Storage.Type, storageDetail(cfg.Storage))
		fmt.Fprintf(out, "Backup:     %s %s\n", orNone(cfg.Backup.Type), backupDetail(cfg.Backup))
		fmt.Fprintf(out, "Encryption: %s\n", orDefault(cfg.Encryption.Type, "age"))
		fmt.Fprintf(out, "Timezone:   %s\n", orDefault(cfg.Locale.Timezone, "local"))
		return nil
	},
}

func storageDetail(s config.StorageConfig) string {
	switch s.Type {
	case "redis":
		return s.RedisAddr
	case "badger":
		if s.InMemory {
			return "(in memory)"
		}
	}
	return s.DataDir
}

func backupDetail(b config.BackupConfig) string {
	switch b.Type {
	case "filesystem":
		return b.FSRoot
	case "s3":
		return "s3://" + b.S3Bucket + "/" + b.S3Prefix
	}
	return ""
}

func orNone(s string) string { return orDefault(s, "none") }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the local database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := app.MigrateDatabase(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date.")
		return nil
	},
}

var dbCopyCmd = &cobra.Command{
	Use:   "copy FILE",
	Short: "Write a consistent copy of the sqlite database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := app.CopyDatabase(cfg, args[0]); err != nil {
			return fmt.Errorf("copying database: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database copied to %s\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbCopyCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
}
