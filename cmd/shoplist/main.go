package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shoplist/internal/app"
	"shoplist/internal/config"
	"shoplist/internal/shop"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps user errors to 2 and everything else to 1.
func exitCode(err error) int {
	switch {
	case errors.Is(err, shop.ErrInvalidInput),
		errors.Is(err, shop.ErrNothingToPurchase),
		errors.Is(err, app.ErrNotFound):
		return 2
	default:
		return 1
	}
}

// loadConfig reads the config file named by the defaults.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config (run `shoplist config init` first): %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a ShopApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "AddProduct", "SavePurchase").
func newApp(operation string) (*app.ShopApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewShopApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// withApp runs fn against a fresh ShopApp and records a failure on the
// operation before closing it.
func withApp(operation string, fn func(a *app.ShopApp) error) error {
	a, err := newApp(operation)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(a); err != nil {
		a.Fail(err)
		return err
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:           "shoplist",
	Short:         "Shopping lists with price tracking",
	SilenceUsage:  true,
	SilenceErrors: false,
}
