// Package stats derives monthly expense summaries from an expense store.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ArionMiles/spendlens/pkg/api"
)

// DefaultMonthlyBudget is the budget used for the progress ratio when none is configured (VND).
var DefaultMonthlyBudget = decimal.NewFromInt(50_000_000)

// TopCategoryCount is the number of categories reported in MonthlyStats.TopCategories.
const TopCategoryCount = 3

// ErrInvalidArgument is returned for an out-of-range month or an inverted date range.
var ErrInvalidArgument = errors.New("invalid argument")

// DataFetchError wraps a failure of the underlying store.
type DataFetchError struct {
	// Op describes the failed query, e.g. "fetching expenses for 2024-09".
	Op  string
	Err error
}

// Error returns the operation followed by the store error.
func (e *DataFetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the store error.
func (e *DataFetchError) Unwrap() error {
	return e.Err
}

// Engine computes MonthlyStats from an ExpenseStore.
type Engine struct {
	store  api.ExpenseStore
	now    func() time.Time
	budget decimal.Decimal
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the source of "now" used for the current-month and today checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMonthlyBudget sets the budget the monthly progress ratio is measured against.
func WithMonthlyBudget(budget decimal.Decimal) Option {
	return func(e *Engine) {
		e.budget = budget
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine reading from store.
func New(store api.ExpenseStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		now:    time.Now,
		budget: DefaultMonthlyBudget,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MonthRange returns the first and last calendar dates of the given month.
func MonthRange(year, month int) (start, end time.Time, err error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month %d out of range 1..12", ErrInvalidArgument, month)
	}
	start = api.NewDate(year, time.Month(month), 1)
	// Day 0 of the following month normalizes to the last day of this one.
	end = api.NewDate(year, time.Month(month)+1, 0)
	return start, end, nil
}

// GetMonthlyStats fetches the month's expenses with a single store query and aggregates them.
func (e *Engine) GetMonthlyStats(ctx context.Context, year, month int) (api.MonthlyStats, error) {
	start, end, err := MonthRange(year, month)
	if err != nil {
		return api.MonthlyStats{}, err
	}

	e.logger.Debug("fetching monthly stats", "year", year, "month", month)

	expenses, err := e.store.ExpensesInRange(ctx, start, end)
	if err != nil {
		return api.MonthlyStats{}, &DataFetchError{
			Op:  fmt.Sprintf("fetching expenses for %04d-%02d", year, month),
			Err: err,
		}
	}

	now := e.now()
	stats := Summarize(expenses, year, month, now, e.budget)

	e.logger.Info("monthly stats calculated",
		"year", year,
		"month", month,
		"expenses", stats.ExpenseCount,
		"monthly_total", stats.MonthlyTotal.String(),
		"daily_total", stats.DailyTotal.String(),
		"top_categories", len(stats.TopCategories),
		"progress", stats.MonthlyProgress,
	)

	return stats, nil
}

// Summarize aggregates one month of expenses as seen at the instant now.
func Summarize(expenses []api.Expense, year, month int, now time.Time, budget decimal.Decimal) api.MonthlyStats {
	total := decimal.Zero
	for _, exp := range expenses {
		total = total.Add(exp.Amount)
	}

	current := IsCurrentMonth(year, month, now)

	daily := decimal.Zero
	if current {
		today := api.DateOf(now)
		for _, exp := range expenses {
			if api.DateOf(exp.Date).Equal(today) {
				daily = daily.Add(exp.Amount)
			}
		}
	}

	return api.MonthlyStats{
		MonthlyTotal:    total,
		DailyTotal:      daily,
		TopCategories:   TopCategories(expenses, TopCategoryCount),
		MonthlyProgress: Progress(total, budget),
		ExpenseCount:    len(expenses),
		ShowDailyCard:   current,
	}
}

// IsCurrentMonth reports whether (year, month) is the month containing now.
func IsCurrentMonth(year, month int, now time.Time) bool {
	return now.Year() == year && int(now.Month()) == month
}

// Progress returns total/budget clamped to [0, 1]. A non-positive budget yields 0.
func Progress(total, budget decimal.Decimal) float64 {
	if !budget.IsPositive() {
		return 0
	}
	ratio := total.Div(budget).InexactFloat64()
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	default:
		return ratio
	}
}

// TopCategories groups expenses by category id and returns the n largest groups with a
// positive sum, largest first. Expenses without a category are skipped. Ties keep the
// order in which the categories were first seen.
func TopCategories(expenses []api.Expense, n int) []api.CategoryAggregate {
	index := make(map[string]int)
	groups := make([]api.CategoryAggregate, 0)

	for _, exp := range expenses {
		if exp.Category == nil || exp.Category.ID == "" {
			continue
		}
		i, ok := index[exp.Category.ID]
		if !ok {
			i = len(groups)
			index[exp.Category.ID] = i
			groups = append(groups, api.CategoryAggregate{
				ID:     exp.Category.ID,
				Name:   exp.Category.Name,
				Icon:   exp.Category.Icon,
				Amount: decimal.Zero,
			})
		}
		groups[i].Amount = groups[i].Amount.Add(exp.Amount)
	}

	groups = slices.DeleteFunc(groups, func(g api.CategoryAggregate) bool {
		return !g.Amount.IsPositive()
	})
	slices.SortStableFunc(groups, func(a, b api.CategoryAggregate) int {
		return b.Amount.Cmp(a.Amount)
	})

	if n >= 0 && len(groups) > n {
		groups = groups[:n]
	}
	return groups
}
