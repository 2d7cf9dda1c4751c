package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"shoplist/internal/app"
	"shoplist/internal/model"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View or change settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("GetSettings", func(a *app.ShopApp) error {
			settings, err := a.Store().GetSettings()
			if err != nil {
				return err
			}
			printSettings(cmd, settings)
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY=VALUE...",
	Short: "Merge values into the settings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("UpdateSettings", func(a *app.ShopApp) error {
			settings, err := a.UpdateSettings(args)
			if err != nil {
				return fmt.Errorf("updating settings: %w", err)
			}
			printSettings(cmd, settings)
			return nil
		})
	},
}

func printSettings(cmd *cobra.Command, settings model.Settings) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := newTable(cmd.OutOrStdout())
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%v\n", k, settings[k])
	}
	tw.Flush()
}

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Export, import or erase all data",
}

var dataExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write every collection to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("ExportData", func(a *app.ShopApp) error {
			if err := a.ExportToFile(args[0]); err != nil {
				return fmt.Errorf("exporting: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
			return nil
		})
	},
}

var dataImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace collections with those in a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("ImportData", func(a *app.ShopApp) error {
			if err := a.ImportFromFile(args[0]); err != nil {
				return fmt.Errorf("importing: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", args[0])
			return nil
		})
	},
}

var dataClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase all products, lists, history and settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return errors.New("refusing to erase all data without --yes")
		}
		return withApp("ClearAllData", func(a *app.ShopApp) error {
			if err := a.ClearAllData(); err != nil {
				return fmt.Errorf("clearing data: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data erased.")
			return nil
		})
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage backups in the configured destination",
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Store a snapshot of all data",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")
		return withApp("Backup", func(a *app.ShopApp) error {
			name, err := a.BackupPush(encrypt)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", name)
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("ListBackups", func(a *app.ShopApp) error {
			names, err := a.BackupList()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No backups.")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		})
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore NAME",
	Short: "Import a stored backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Restore", func(a *app.ShopApp) error {
			if err := a.BackupRestore(args[0]); err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
			return nil
		})
	},
}

func init() {
	dataClearCmd.Flags().Bool("yes", false, "Confirm erasing everything")
	backupPushCmd.Flags().Bool("encrypt", false, "Encrypt the backup with age")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	dataCmd.AddCommand(dataExportCmd)
	dataCmd.AddCommand(dataImportCmd)
	dataCmd.AddCommand(dataClearCmd)
	backupCmd.AddCommand(backupPushCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)

	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(dataCmd)
	rootCmd.AddCommand(backupCmd)
}
