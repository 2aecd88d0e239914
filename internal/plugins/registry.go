// Package plugins provides a registry of expense store backends.
package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ArionMiles/spendlens/pkg/api"
	"github.com/ArionMiles/spendlens/pkg/config"
)

// StorePlugin defines the interface for expense store backends.
type StorePlugin interface {
	// Name returns the plugin name (e.g., "postgres", "sqlite").
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ConfigSchema returns a JSON schema describing the configuration keys the plugin reads.
	ConfigSchema() map[string]any
	// Open creates a store from the application configuration.
	Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (api.Store, error)
}

// Registry manages available store plugins.
type Registry struct {
	stores map[string]StorePlugin
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[string]StorePlugin),
	}
}

// Register registers a store plugin.
func (r *Registry) Register(plugin StorePlugin) error {
	name := plugin.Name()
	if _, exists := r.stores[name]; exists {
		return fmt.Errorf("store plugin %q already registered", name)
	}
	r.stores[name] = plugin
	return nil
}

// Get returns a store plugin by name.
func (r *Registry) Get(name string) (StorePlugin, error) {
	plugin, exists := r.stores[name]
	if !exists {
		return nil, fmt.Errorf("store plugin %q not found", name)
	}
	return plugin, nil
}

// List returns all registered store plugins sorted by name.
func (r *Registry) List() []StorePlugin {
	plugins := make([]StorePlugin, 0, len(r.stores))
	for _, plugin := range r.stores {
		plugins = append(plugins, plugin)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Name() < plugins[j].Name()
	})
	return plugins
}

// Open opens the store named by cfg.StoreBackend.
func (r *Registry) Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (api.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	plugin, err := r.Get(cfg.StoreBackend)
	if err != nil {
		return nil, err
	}

	store, err := plugin.Open(ctx, cfg, logger.With("component", "store", "plugin", plugin.Name()))
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", plugin.Name(), err)
	}
	return store, nil
}
