package main

import (
	"context"
	"flag"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ArionMiles/spendlens/internal/tui"
	"github.com/ArionMiles/spendlens/pkg/config"
	"github.com/ArionMiles/spendlens/pkg/logging"
	"github.com/ArionMiles/spendlens/pkg/navigator"
)

// runBrowse opens the interactive month browser.
func runBrowse(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// The view owns the terminal, so log output would corrupt it.
	logger := logging.Discard()

	ctx := context.Background()
	a, err := open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := navigator.New(a.engine,
		navigator.WithClock(a.clock),
		navigator.WithLabels(a.labels),
		navigator.WithLogger(logger),
	)

	p := tea.NewProgram(tui.New(ctx, ctrl, cfg.Locale, cfg.Currency), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
