package stats

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ArionMiles/spendlens/pkg/api"
)

// TestConnection probes the store with a count query. Failures are reported in the
// returned status, never as an error.
func (e *Engine) TestConnection(ctx context.Context) api.ConnectionStatus {
	e.logger.Debug("testing store connection")

	count, err := e.store.CountExpenses(ctx)
	if err != nil {
		e.logger.Error("connection test failed", "error", err)
		return api.ConnectionStatus{Success: false, Message: err.Error()}
	}

	e.logger.Info("connection test succeeded", "expenses", count)
	return api.ConnectionStatus{
		Success: true,
		Message: fmt.Sprintf("Connected successfully. %d expenses in database.", count),
		Count:   &count,
	}
}

// ExpensesInRange lists the expenses dated in [start, end], newest first.
func (e *Engine) ExpensesInRange(ctx context.Context, start, end time.Time) ([]api.Expense, error) {
	start, end = api.DateOf(start), api.DateOf(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s is before start %s",
			ErrInvalidArgument, end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	expenses, err := e.store.ExpensesInRange(ctx, start, end)
	if err != nil {
		return nil, &DataFetchError{
			Op:  fmt.Sprintf("fetching expenses from %s to %s", start.Format(time.DateOnly), end.Format(time.DateOnly)),
			Err: err,
		}
	}

	slices.SortStableFunc(expenses, func(a, b api.Expense) int {
		return b.Date.Compare(a.Date)
	})
	return expenses, nil
}
