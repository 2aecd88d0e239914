package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArionMiles/spendlens/internal/daemon"
	"github.com/ArionMiles/spendlens/internal/server"
	"github.com/ArionMiles/spendlens/pkg/config"
	"github.com/ArionMiles/spendlens/pkg/navigator"
)

// runServe serves the JSON API until SIGINT or SIGTERM.
func runServe(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.HTTPAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	nav := navigator.New(a.engine,
		navigator.WithClock(a.clock),
		navigator.WithLabels(a.labels),
		navigator.WithLogger(logger.With("component", "navigator")),
	)

	srv := server.New(a.engine, nav, server.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		Labels:         a.labels,
		Currency:       cfg.Currency,
		Clock:          a.clock,
	}, logger.With("component", "http"))

	// Initial load for the current month; it must outlive a shutdown signal mid-fetch.
	nav.Start(context.WithoutCancel(ctx))

	logger.Info("configuration loaded",
		"backend", cfg.StoreBackend,
		"locale", cfg.Locale,
		"timezone", cfg.Timezone,
	)

	runner := daemon.New(srv.Handler(), logger.With("component", "daemon"))
	if err := runner.Run(ctx, *addr); err != nil {
		return fmt.Errorf("daemon failed: %w", err)
	}
	return nil
}
