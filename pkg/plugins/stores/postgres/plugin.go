// Package postgres provides a plugin wrapper for the PostgreSQL store.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ArionMiles/spendlens/pkg/api"
	"github.com/ArionMiles/spendlens/pkg/config"
	pgstore "github.com/ArionMiles/spendlens/pkg/store/postgres"
)

// Plugin implements the StorePlugin interface for PostgreSQL.
type Plugin struct{}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return "postgres"
}

// Description returns a human-readable description.
func (p *Plugin) Description() string {
	return "Read expenses from a PostgreSQL database (including Supabase)"
}

// ConfigSchema returns a JSON schema describing the plugin's configuration.
func (p *Plugin) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"POSTGRES_URL": map[string]any{
				"type":        "string",
				"description": "Full connection URL; overrides the individual fields",
			},
			"POSTGRES_HOST": map[string]any{
				"type":        "string",
				"description": "PostgreSQL host address",
				"default":     "localhost",
			},
			"POSTGRES_PORT": map[string]any{
				"type":        "integer",
				"description": "PostgreSQL port",
				"default":     5432,
			},
			"POSTGRES_DB": map[string]any{
				"type":        "string",
				"description": "Database name",
			},
			"POSTGRES_USER": map[string]any{
				"type":        "string",
				"description": "Database user",
			},
			"POSTGRES_PASSWORD": map[string]any{
				"type":        "string",
				"description": "Database password",
			},
			"POSTGRES_SSLMODE": map[string]any{
				"type":        "string",
				"description": "SSL mode (disable, require, verify-ca, verify-full)",
				"default":     "disable",
				"enum":        []string{"disable", "require", "verify-ca", "verify-full"},
			},
			"POSTGRES_MAX_POOL_SIZE": map[string]any{
				"type":        "integer",
				"description": "Maximum number of connections in the pool (default: 10)",
				"default":     10,
			},
			"POSTGRES_MIGRATE": map[string]any{
				"type":        "boolean",
				"description": "Apply schema migrations on startup",
				"default":     false,
			},
			"STORE_RETRY_ATTEMPTS": map[string]any{
				"type":        "integer",
				"description": "Attempts for queries failing with transient connection errors",
				"default":     3,
			},
		},
		"required": []string{"POSTGRES_HOST", "POSTGRES_DB", "POSTGRES_USER"},
	}
}

// StoreConfig maps the application configuration onto the store configuration.
func StoreConfig(cfg config.Config) pgstore.Config {
	pg := cfg.Postgres
	return pgstore.Config{
		URL:           pg.URL,
		Host:          pg.Host,
		Port:          pg.Port,
		Database:      pg.Database,
		User:          pg.User,
		Password:      pg.Password,
		SSLMode:       pg.SSLMode,
		MaxPoolSize:   pg.MaxPoolSize,
		RetryAttempts: cfg.StoreRetryAttempts,
		RetryDelay:    cfg.StoreRetryDelay,
		Migrate:       pg.Migrate,
	}
}

// Open creates a new PostgreSQL store instance.
func (p *Plugin) Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (api.Store, error) {
	if cfg.Postgres.URL == "" {
		if cfg.Postgres.Host == "" {
			return nil, fmt.Errorf("host is required")
		}
		if cfg.Postgres.Database == "" {
			return nil, fmt.Errorf("database is required")
		}
		if cfg.Postgres.User == "" {
			return nil, fmt.Errorf("user is required")
		}
	}

	store, err := pgstore.New(ctx, StoreConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}
