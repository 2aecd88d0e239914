package main

import (
	"fmt"

	"github.com/ArionMiles/spendlens/pkg/config"
	postgresplugin "github.com/ArionMiles/spendlens/pkg/plugins/stores/postgres"
	pgstore "github.com/ArionMiles/spendlens/pkg/store/postgres"
	sqlitestore "github.com/ArionMiles/spendlens/pkg/store/sqlite"
)

// runMigrate applies the schema migrations of the configured backend.
func runMigrate(cfg config.Config) error {
	fmt.Println("=== Spendlens Migrate ===")
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := setupLogging(cfg)

	switch cfg.StoreBackend {
	case "postgres":
		if err := pgstore.Migrate(postgresplugin.StoreConfig(cfg), logger); err != nil {
			return err
		}
	case "sqlite":
		if err := sqlitestore.Migrate(cfg.SQLitePath); err != nil {
			return err
		}
	default:
		fmt.Printf("Backend %q has no schema; nothing to do.\n", cfg.StoreBackend)
		return nil
	}

	fmt.Printf("✓ %s schema is up to date\n", cfg.StoreBackend)
	return nil
}
