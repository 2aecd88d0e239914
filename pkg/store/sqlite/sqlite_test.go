package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/spendlens/pkg/api"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "spendlens.db")
	store, err := Open(context.Background(), path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.db.Exec(`
		INSERT INTO categories (id, name, icon) VALUES
			('food', 'Thực phẩm', 'restaurant'),
			('transport', 'Di chuyển', NULL);
		INSERT INTO expenses (id, expense_date, amount, description, category_id) VALUES
			('e1', '2024-02-01', '120000', 'Phở', 'food'),
			('e2', '2024-02-29', '45000.5', NULL, 'transport'),
			('e3', '2024-02-10', 'n/a', 'Hỏng', 'food'),
			('e4', '2024-02-11', '9000', 'Gửi xe', NULL),
			('e5', '2024-02-12', '1000', 'Mất danh mục', 'gone'),
			('e6', '2024-03-01', '777', 'next month', 'food');`)
	require.NoError(t, err)

	return store
}

func TestStore_ExpensesInRange(t *testing.T) {
	store := openTestStore(t)

	got, err := store.ExpensesInRange(context.Background(),
		api.NewDate(2024, time.February, 1), api.NewDate(2024, time.February, 29))
	require.NoError(t, err)
	require.Len(t, got, 5)

	byID := make(map[string]api.Expense, len(got))
	for _, e := range got {
		byID[e.ID] = e
	}

	assert.True(t, byID["e1"].Amount.Equal(decimal.NewFromInt(120000)))
	require.NotNil(t, byID["e1"].Category)
	assert.Equal(t, "Thực phẩm", byID["e1"].Category.Name)
	assert.Equal(t, "restaurant", byID["e1"].Category.Icon)

	require.NotNil(t, byID["e2"].Category)
	assert.Empty(t, byID["e2"].Category.Icon)
	assert.Empty(t, byID["e2"].Description)
	assert.Equal(t, "2024-02-29", byID["e2"].Date.Format(time.DateOnly))

	assert.True(t, byID["e3"].Amount.IsZero(), "malformed amount should read as zero")
	assert.Nil(t, byID["e4"].Category)
	assert.Nil(t, byID["e5"].Category, "dangling category reference should read as no category")
}

func TestStore_CountExpenses(t *testing.T) {
	store := openTestStore(t)

	count, err := store.CountExpenses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spendlens.db")
	require.NoError(t, Migrate(path))
	require.NoError(t, Migrate(path))
}
