// Package sqlite provides a plugin wrapper for the SQLite store.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ArionMiles/spendlens/pkg/api"
	"github.com/ArionMiles/spendlens/pkg/config"
	sqlitestore "github.com/ArionMiles/spendlens/pkg/store/sqlite"
)

// Plugin implements the StorePlugin interface for SQLite.
type Plugin struct{}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return "sqlite"
}

// Description returns a human-readable description.
func (p *Plugin) Description() string {
	return "Read expenses from a local SQLite database file"
}

// ConfigSchema returns a JSON schema describing the plugin's configuration.
func (p *Plugin) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"SQLITE_PATH": map[string]any{
				"type":        "string",
				"description": "Path to the database file (created if missing)",
				"default":     "data/spendlens.db",
			},
		},
		"required": []string{"SQLITE_PATH"},
	}
}

// Open creates a new SQLite store instance.
func (p *Plugin) Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (api.Store, error) {
	if cfg.SQLitePath == "" {
		return nil, fmt.Errorf("path is required")
	}
	store, err := sqlitestore.Open(ctx, cfg.SQLitePath, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}
