// Package memory provides an in-memory expense store loaded from JSON fixtures.
package memory

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ArionMiles/spendlens/pkg/api"
)

//go:embed fixtures/demo.json
var demoFixture []byte

// fixtureNamespace derives stable expense ids for fixture rows that carry none.
var fixtureNamespace = uuid.MustParse("6f1d7b0e-4c5a-4f2b-9a57-3c9e1e0b8d21")

// Fixture is the on-disk shape of a fixture file.
type Fixture struct {
	Categories []api.Category   `json:"categories"`
	Expenses   []FixtureExpense `json:"expenses"`
}

// FixtureExpense is one expense row. Amount may be a JSON number or string.
type FixtureExpense struct {
	ID          string          `json:"id,omitempty"`
	Date        string          `json:"expense_date"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description,omitempty"`
	CategoryID  string          `json:"category_id,omitempty"`
}

// Store serves a fixed set of expenses from memory. It is safe for concurrent use.
type Store struct {
	expenses []api.Expense
}

// New creates a store holding the given expenses.
func New(expenses []api.Expense) *Store {
	return &Store{expenses: append([]api.Expense(nil), expenses...)}
}

// Demo returns a store loaded with the built-in demo month (September 2024).
func Demo(logger *slog.Logger) (*Store, error) {
	return Load(bytes.NewReader(demoFixture), logger)
}

// LoadFile reads a fixture file from disk.
func LoadFile(path string, logger *slog.Logger) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fixture file: %w", err)
	}
	defer f.Close()

	return Load(f, logger)
}

// Load decodes a fixture. Rows referencing an unknown category are kept without one;
// malformed amounts are read as zero.
func Load(r io.Reader, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var fx Fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}

	categories := make(map[string]api.Category, len(fx.Categories))
	for _, c := range fx.Categories {
		categories[c.ID] = c
	}

	expenses := make([]api.Expense, 0, len(fx.Expenses))
	for i, row := range fx.Expenses {
		date, err := time.Parse(time.DateOnly, row.Date)
		if err != nil {
			return nil, fmt.Errorf("expense %d: parsing date %q: %w", i, row.Date, err)
		}

		id := row.ID
		if id == "" {
			id = uuid.NewSHA1(fixtureNamespace, []byte(row.Date+"|"+strconv.Itoa(i)+"|"+row.Description)).String()
		}

		exp := api.Expense{
			ID:          id,
			Date:        date,
			Amount:      api.CoerceAmount(rawAmount(row.Amount), id, logger),
			Description: row.Description,
		}
		if c, ok := categories[row.CategoryID]; ok {
			exp.Category = &c
		} else if row.CategoryID != "" {
			logger.Warn("expense references unknown category", "expense_id", id, "category_id", row.CategoryID)
		}
		expenses = append(expenses, exp)
	}

	logger.Debug("loaded expense fixture", "expenses", len(expenses), "categories", len(categories))
	return New(expenses), nil
}

// rawAmount unwraps a JSON string amount; numbers pass through as written.
func rawAmount(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ExpensesInRange returns the expenses dated in [start, end], inclusive.
func (s *Store) ExpensesInRange(ctx context.Context, start, end time.Time) ([]api.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]api.Expense, 0)
	for _, e := range s.expenses {
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// CountExpenses returns the number of stored expenses.
func (s *Store) CountExpenses(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return int64(len(s.expenses)), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
