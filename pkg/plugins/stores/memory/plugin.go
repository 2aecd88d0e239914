// Package memory provides a plugin wrapper for the in-memory fixture store.
package memory

import (
	"context"
	"log/slog"

	"github.com/ArionMiles/spendlens/pkg/api"
	"github.com/ArionMiles/spendlens/pkg/config"
	memstore "github.com/ArionMiles/spendlens/pkg/store/memory"
)

// Plugin implements the StorePlugin interface for in-memory fixtures.
type Plugin struct{}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return "memory"
}

// Description returns a human-readable description.
func (p *Plugin) Description() string {
	return "Serve expenses from a JSON fixture file, or the built-in September 2024 demo data"
}

// ConfigSchema returns a JSON schema describing the plugin's configuration.
func (p *Plugin) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"MEMORY_FIXTURES": map[string]any{
				"type":        "string",
				"description": "Path to a fixture file; empty uses the built-in demo data",
			},
		},
	}
}

// Open loads the configured fixtures.
func (p *Plugin) Open(_ context.Context, cfg config.Config, logger *slog.Logger) (api.Store, error) {
	var (
		store *memstore.Store
		err   error
	)
	if cfg.MemoryFixtures == "" {
		store, err = memstore.Demo(logger)
	} else {
		store, err = memstore.LoadFile(cfg.MemoryFixtures, logger)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
