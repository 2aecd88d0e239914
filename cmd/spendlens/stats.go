package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ArionMiles/spendlens/pkg/config"
	"github.com/ArionMiles/spendlens/pkg/navigator"
	"github.com/ArionMiles/spendlens/pkg/report"
)

// runStats prints the statistics of one month, defaulting to the current one.
func runStats(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	year := fs.Int("year", 0, "year to report (default: current)")
	month := fs.Int("month", 0, "month to report, 1-12 (default: current)")
	format := fs.String("format", "text", "output format: text, json or csv")
	if err := fs.Parse(args); err != nil {
		return err
	}

	writer, err := report.New(*format, cfg.Locale)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := open(ctx, cfg, setupLogging(cfg))
	if err != nil {
		return err
	}
	defer a.Close()

	sel := navigator.SelectionOf(a.clock())
	if *year != 0 {
		sel.Year = *year
	}
	if *month != 0 {
		sel.Month = *month
	}

	monthly, err := a.engine.GetMonthlyStats(ctx, sel.Year, sel.Month)
	if err != nil {
		return fmt.Errorf("getting stats for %s: %w", sel, err)
	}

	return writer.WriteStats(os.Stdout, report.Stats{
		Label:    a.labels.Format(sel),
		Year:     sel.Year,
		Month:    sel.Month,
		Currency: cfg.Currency,
		Stats:    monthly,
	})
}

// runExpenses lists the expenses between two dates, newest first.
func runExpenses(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("expenses", flag.ContinueOnError)
	from := fs.String("from", "", "first date, YYYY-MM-DD (default: first day of the current month)")
	to := fs.String("to", "", "last date, YYYY-MM-DD (default: today)")
	format := fs.String("format", "text", "output format: text, json or csv")
	if err := fs.Parse(args); err != nil {
		return err
	}

	writer, err := report.New(*format, cfg.Locale)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := open(ctx, cfg, setupLogging(cfg))
	if err != nil {
		return err
	}
	defer a.Close()

	now := a.clock()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if *from != "" {
		if start, err = time.Parse(time.DateOnly, *from); err != nil {
			return fmt.Errorf("parsing -from: %w", err)
		}
	}
	if *to != "" {
		if end, err = time.Parse(time.DateOnly, *to); err != nil {
			return fmt.Errorf("parsing -to: %w", err)
		}
	}

	expenses, err := a.engine.ExpensesInRange(ctx, start, end)
	if err != nil {
		return err
	}
	return writer.WriteExpenses(os.Stdout, expenses)
}
