package stats

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ArionMiles/spendlens/pkg/api"
	"github.com/ArionMiles/spendlens/pkg/api/apimock"
)

// fakeStore filters a fixed slice by date and records the ranges it was asked for.
type fakeStore struct {
	expenses []api.Expense
	count    int64
	err      error
	calls    [][2]time.Time
}

func (f *fakeStore) ExpensesInRange(_ context.Context, start, end time.Time) ([]api.Expense, error) {
	f.calls = append(f.calls, [2]time.Time{start, end})
	if f.err != nil {
		return nil, f.err
	}
	var out []api.Expense
	for _, e := range f.expenses {
		if !e.Date.Before(start) && !e.Date.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) CountExpenses(context.Context) (int64, error) {
	return f.count, f.err
}

var (
	food      = &api.Category{ID: "food", Name: "Thực phẩm", Icon: "restaurant"}
	transport = &api.Category{ID: "transport", Name: "Di chuyển", Icon: "car"}
	home      = &api.Category{ID: "home", Name: "Nhà ở", Icon: "home"}
	health    = &api.Category{ID: "health", Name: "Sức khỏe", Icon: "medkit"}
)

func expense(id string, day int, amount int64, cat *api.Category) api.Expense {
	return api.Expense{
		ID:       id,
		Date:     api.NewDate(2024, time.September, day),
		Amount:   decimal.NewFromInt(amount),
		Category: cat,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(store api.ExpenseStore, now time.Time, opts ...Option) *Engine {
	opts = append([]Option{WithClock(fixedClock(now)), WithLogger(quietLogger())}, opts...)
	return New(store, opts...)
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{name: "leap february", year: 2024, month: 2, wantStart: "2024-02-01", wantEnd: "2024-02-29"},
		{name: "common february", year: 2023, month: 2, wantStart: "2023-02-01", wantEnd: "2023-02-28"},
		{name: "century non-leap", year: 1900, month: 2, wantStart: "1900-02-01", wantEnd: "1900-02-28"},
		{name: "thirty days", year: 2024, month: 9, wantStart: "2024-09-01", wantEnd: "2024-09-30"},
		{name: "december", year: 2024, month: 12, wantStart: "2024-12-01", wantEnd: "2024-12-31"},
		{name: "month zero", year: 2024, month: 0, wantErr: true},
		{name: "month thirteen", year: 2024, month: 13, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := MonthRange(tt.year, tt.month)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start.Format(time.DateOnly))
			assert.Equal(t, tt.wantEnd, end.Format(time.DateOnly))
		})
	}
}

func TestGetMonthlyStats_SeptemberScenario(t *testing.T) {
	store := &fakeStore{expenses: []api.Expense{
		expense("1", 2, 2_000_000, food),
		expense("2", 3, 3_180_000, transport),
		expense("3", 10, 3_250_000, food),
		expense("4", 15, 2_890_000, home),
	}}
	now := time.Date(2024, time.October, 5, 9, 0, 0, 0, time.UTC)
	engine := newEngine(store, now)

	stats, err := engine.GetMonthlyStats(context.Background(), 2024, 9)
	require.NoError(t, err)

	assert.True(t, stats.MonthlyTotal.Equal(decimal.NewFromInt(11_320_000)), "monthly total = %s", stats.MonthlyTotal)
	assert.True(t, stats.DailyTotal.IsZero())
	assert.False(t, stats.ShowDailyCard)
	assert.Equal(t, 4, stats.ExpenseCount)
	assert.InDelta(t, 0.2264, stats.MonthlyProgress, 1e-9)

	require.Len(t, stats.TopCategories, 3)
	assert.Equal(t, "food", stats.TopCategories[0].ID)
	assert.Equal(t, "transport", stats.TopCategories[1].ID)
	assert.Equal(t, "home", stats.TopCategories[2].ID)
	assert.True(t, stats.TopCategories[0].Amount.Equal(decimal.NewFromInt(5_250_000)))
	assert.Equal(t, "restaurant", stats.TopCategories[0].Icon)

	require.Len(t, store.calls, 1)
	assert.Equal(t, "2024-09-01", store.calls[0][0].Format(time.DateOnly))
	assert.Equal(t, "2024-09-30", store.calls[0][1].Format(time.DateOnly))
}

func TestGetMonthlyStats_Totals(t *testing.T) {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		expenses []api.Expense
		want     int64
	}{
		{name: "no records", expenses: nil, want: 0},
		{name: "one record", expenses: []api.Expense{expense("1", 1, 120_000, food)}, want: 120_000},
		{name: "many records", expenses: []api.Expense{
			expense("1", 1, 100, food),
			expense("2", 2, 200, transport),
			expense("3", 30, 300, nil),
		}, want: 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine(&fakeStore{expenses: tt.expenses}, now)
			stats, err := engine.GetMonthlyStats(context.Background(), 2024, 9)
			require.NoError(t, err)
			assert.True(t, stats.MonthlyTotal.Equal(decimal.NewFromInt(tt.want)), "got %s", stats.MonthlyTotal)
			assert.Equal(t, len(tt.expenses), stats.ExpenseCount)
			assert.NotNil(t, stats.TopCategories)
		})
	}
}

func TestGetMonthlyStats_CurrentMonthDailyTotal(t *testing.T) {
	store := &fakeStore{expenses: []api.Expense{
		expense("1", 13, 50_000, food),
		expense("2", 14, 75_000, food),
		expense("3", 14, 25_000, transport),
	}}
	now := time.Date(2024, time.September, 14, 20, 0, 0, 0, time.UTC)
	engine := newEngine(store, now)

	stats, err := engine.GetMonthlyStats(context.Background(), 2024, 9)
	require.NoError(t, err)

	assert.True(t, stats.ShowDailyCard)
	assert.True(t, stats.DailyTotal.Equal(decimal.NewFromInt(100_000)), "daily total = %s", stats.DailyTotal)
	assert.True(t, stats.MonthlyTotal.Equal(decimal.NewFromInt(150_000)))
}

func TestGetMonthlyStats_TodayUsesClockLocation(t *testing.T) {
	hanoi := time.FixedZone("ICT", 7*60*60)
	// 00:30 on the 15th in Hanoi is still the 14th in UTC.
	now := time.Date(2024, time.September, 15, 0, 30, 0, 0, hanoi)
	store := &fakeStore{expenses: []api.Expense{
		expense("1", 14, 10, food),
		expense("2", 15, 20, food),
	}}

	stats, err := newEngine(store, now).GetMonthlyStats(context.Background(), 2024, 9)
	require.NoError(t, err)
	assert.True(t, stats.DailyTotal.Equal(decimal.NewFromInt(20)), "daily total = %s", stats.DailyTotal)
}

func TestGetMonthlyStats_InvalidMonth(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := apimock.NewMockExpenseStore(ctrl)
	// No store calls are expected for a rejected month.

	_, err := newEngine(store, time.Now()).GetMonthlyStats(context.Background(), 2024, 13)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetMonthlyStats_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := apimock.NewMockExpenseStore(ctrl)
	storeErr := errors.New("connection refused")
	store.EXPECT().
		ExpensesInRange(gomock.Any(), api.NewDate(2024, time.February, 1), api.NewDate(2024, time.February, 29)).
		Return(nil, storeErr).
		Times(1)

	_, err := newEngine(store, time.Now()).GetMonthlyStats(context.Background(), 2024, 2)
	require.Error(t, err)

	var fetchErr *DataFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "2024-02")
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name   string
		total  int64
		budget int64
		want   float64
	}{
		{name: "half", total: 25, budget: 50, want: 0.5},
		{name: "over budget clamps", total: 60_000_000, budget: 50_000_000, want: 1},
		{name: "exactly on budget", total: 50, budget: 50, want: 1},
		{name: "zero budget", total: 10, budget: 0, want: 0},
		{name: "negative budget", total: 10, budget: -5, want: 0},
		{name: "negative total", total: -10, budget: 50, want: 0},
		{name: "nothing spent", total: 0, budget: 50, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Progress(decimal.NewFromInt(tt.total), decimal.NewFromInt(tt.budget))
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestGetMonthlyStats_ConfiguredBudget(t *testing.T) {
	store := &fakeStore{expenses: []api.Expense{expense("1", 1, 750, food)}}
	engine := newEngine(store, time.Now(), WithMonthlyBudget(decimal.NewFromInt(1000)))

	stats, err := engine.GetMonthlyStats(context.Background(), 2024, 9)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, stats.MonthlyProgress, 1e-12)
}

func TestTopCategories(t *testing.T) {
	tests := []struct {
		name    string
		in      []api.Expense
		wantIDs []string
	}{
		{name: "empty", in: nil, wantIDs: []string{}},
		{name: "fewer than three", in: []api.Expense{
			expense("1", 1, 10, food),
			expense("2", 2, 30, transport),
		}, wantIDs: []string{"transport", "food"}},
		{name: "keeps only three largest", in: []api.Expense{
			expense("1", 1, 10, food),
			expense("2", 2, 40, transport),
			expense("3", 3, 30, home),
			expense("4", 4, 20, health),
		}, wantIDs: []string{"transport", "home", "health"}},
		{name: "sums per category", in: []api.Expense{
			expense("1", 1, 10, food),
			expense("2", 2, 15, transport),
			expense("3", 3, 10, food),
		}, wantIDs: []string{"food", "transport"}},
		{name: "ties keep encounter order", in: []api.Expense{
			expense("1", 1, 10, home),
			expense("2", 2, 10, food),
			expense("3", 3, 10, transport),
		}, wantIDs: []string{"home", "food", "transport"}},
		{name: "skips missing category", in: []api.Expense{
			expense("1", 1, 99, nil),
			expense("2", 2, 1, food),
		}, wantIDs: []string{"food"}},
		{name: "drops zero and negative groups", in: []api.Expense{
			expense("1", 1, 0, food),
			expense("2", 2, 10, transport),
			expense("3", 3, -10, transport),
			expense("4", 4, -5, home),
			expense("5", 5, 7, health),
		}, wantIDs: []string{"health"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopCategories(tt.in, TopCategoryCount)
			ids := make([]string, 0, len(got))
			for _, g := range got {
				ids = append(ids, g.ID)
				assert.True(t, g.Amount.IsPositive())
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestTopCategories_StrictlyDescending(t *testing.T) {
	got := TopCategories([]api.Expense{
		expense("1", 1, 5, food),
		expense("2", 2, 50, transport),
		expense("3", 3, 500, home),
	}, TopCategoryCount)

	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Amount.GreaterThan(got[i].Amount))
	}
}

func TestTestConnection(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		status := newEngine(&fakeStore{count: 42}, time.Now()).TestConnection(context.Background())
		assert.True(t, status.Success)
		assert.Equal(t, "Connected successfully. 42 expenses in database.", status.Message)
		require.NotNil(t, status.Count)
		assert.Equal(t, int64(42), *status.Count)
	})

	t.Run("failure is reported not returned", func(t *testing.T) {
		status := newEngine(&fakeStore{err: errors.New("permission denied")}, time.Now()).TestConnection(context.Background())
		assert.False(t, status.Success)
		assert.Equal(t, "permission denied", status.Message)
		assert.Nil(t, status.Count)
	})
}

func TestExpensesInRange(t *testing.T) {
	store := &fakeStore{expenses: []api.Expense{
		expense("1", 1, 10, food),
		expense("2", 20, 10, food),
		expense("3", 10, 10, nil),
	}}
	engine := newEngine(store, time.Now())

	got, err := engine.ExpensesInRange(context.Background(),
		api.NewDate(2024, time.September, 1), api.NewDate(2024, time.September, 30))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2", "3", "1"}, []string{got[0].ID, got[1].ID, got[2].ID})

	_, err = engine.ExpensesInRange(context.Background(),
		api.NewDate(2024, time.September, 30), api.NewDate(2024, time.September, 1))
	require.ErrorIs(t, err, ErrInvalidArgument)
}
