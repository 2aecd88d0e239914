package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ArionMiles/spendlens/internal/plugins"
	"github.com/ArionMiles/spendlens/pkg/api"
	"github.com/ArionMiles/spendlens/pkg/config"
	"github.com/ArionMiles/spendlens/pkg/logging"
	"github.com/ArionMiles/spendlens/pkg/navigator"
	memoryplugin "github.com/ArionMiles/spendlens/pkg/plugins/stores/memory"
	postgresplugin "github.com/ArionMiles/spendlens/pkg/plugins/stores/postgres"
	sqliteplugin "github.com/ArionMiles/spendlens/pkg/plugins/stores/sqlite"
	"github.com/ArionMiles/spendlens/pkg/stats"
)

const usage = `spendlens - monthly expense statistics

Usage:
  spendlens <command> [flags]

Commands:
  stats     Print the statistics of one month
  expenses  List expenses in a date range
  browse    Browse months interactively
  serve     Serve the JSON API
  status    Check configuration and store connectivity
  migrate   Apply database migrations for the configured backend

Global flags:
  -config   Path to a JSON config file (default $SPENDLENS_CONFIG)

Run 'spendlens <command> -h' for command flags.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("spendlens", flag.ContinueOnError)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := global.String("config", "", "path to a JSON config file")
	if err := global.Parse(args); err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return errors.New("no command given")
	}

	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "stats":
		return runStats(cfg, cmdArgs)
	case "expenses":
		return runExpenses(cfg, cmdArgs)
	case "browse":
		return runBrowse(cfg, cmdArgs)
	case "serve":
		return runServe(cfg, cmdArgs)
	case "status":
		return runStatus(cfg, *configPath)
	case "migrate":
		return runMigrate(cfg)
	case "help":
		global.Usage()
		return nil
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newRegistry() (*plugins.Registry, error) {
	registry := plugins.NewRegistry()
	for _, p := range []plugins.StorePlugin{
		&memoryplugin.Plugin{},
		&postgresplugin.Plugin{},
		&sqliteplugin.Plugin{},
	} {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// app bundles what every data command needs.
type app struct {
	logger *slog.Logger
	store  api.Store
	engine *stats.Engine
	clock  func() time.Time
	labels navigator.Labels
}

// open validates cfg, opens the configured store and builds the engine.
func open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	registry, err := newRegistry()
	if err != nil {
		return nil, err
	}

	clock, err := cfg.Clock()
	if err != nil {
		return nil, err
	}
	budget, err := cfg.Budget()
	if err != nil {
		return nil, err
	}

	store, err := registry.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("store opened", "backend", cfg.StoreBackend)

	engine := stats.New(store,
		stats.WithClock(clock),
		stats.WithMonthlyBudget(budget),
		stats.WithLogger(logger.With("component", "stats")),
	)

	return &app{
		logger: logger,
		store:  store,
		engine: engine,
		clock:  clock,
		labels: navigator.LabelsFor(cfg.Locale),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
	}
}

func setupLogging(cfg config.Config) *slog.Logger {
	return logging.Setup(logging.FromStrings(cfg.LogLevel, cfg.LogFormat))
}
