// Package sqlite provides a local SQLite expense store with the same schema shape as the
// remote PostgreSQL one. Dates are stored as YYYY-MM-DD text.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/ArionMiles/spendlens/pkg/api"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const rangeQuery = `
	SELECT e.id, e.expense_date, CAST(e.amount AS TEXT), COALESCE(e.description, ''),
	       c.id, c.name, c.icon
	FROM expenses e
	LEFT JOIN categories c ON c.id = e.category_id
	WHERE e.expense_date >= ? AND e.expense_date <= ?`

// Store reads expenses from a SQLite database file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("opened SQLite store", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Migrate applies the embedded schema migrations to the database at path.
func Migrate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}

	// A separate connection keeps the migrate driver from closing the store's handle.
	migrateDB, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// ExpensesInRange returns the expenses dated in [start, end] joined with their category.
func (s *Store) ExpensesInRange(ctx context.Context, start, end time.Time) ([]api.Expense, error) {
	rows, err := s.db.QueryContext(ctx, rangeQuery, start.Format(time.DateOnly), end.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]api.Expense, 0)
	for rows.Next() {
		var (
			id, rawDate, amount, description string
			catID, catName, catIcon          sql.NullString
		)
		if err := rows.Scan(&id, &rawDate, &amount, &description, &catID, &catName, &catIcon); err != nil {
			return nil, fmt.Errorf("scanning expense row: %w", err)
		}

		date, err := time.Parse(time.DateOnly, rawDate)
		if err != nil {
			return nil, fmt.Errorf("expense %s: parsing date %q: %w", id, rawDate, err)
		}

		exp := api.Expense{
			ID:          id,
			Date:        date,
			Amount:      api.CoerceAmount(amount, id, s.logger),
			Description: description,
		}
		if catID.Valid {
			exp.Category = &api.Category{ID: catID.String, Name: catName.String, Icon: catIcon.String}
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expenses: %w", err)
	}

	return expenses, nil
}

// CountExpenses returns the total number of expenses.
func (s *Store) CountExpenses(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM expenses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting expenses: %w", err)
	}
	return count, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
