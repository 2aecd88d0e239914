// Package postgres provides a PostgreSQL-backed expense store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArionMiles/spendlens/pkg/api"
)

// Config holds the PostgreSQL store configuration.
type Config struct {
	// URL is a full connection string. When set, the individual fields are ignored.
	URL string

	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int

	// RetryAttempts is the number of tries for a query failing with a transient error.
	RetryAttempts uint
	// RetryDelay is the base delay between retries.
	RetryDelay time.Duration

	// Migrate applies the embedded schema migrations when the store is opened.
	Migrate bool
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = 10
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
	return c
}

// ConnString returns the pgx connection string for the configuration.
func (c Config) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	c = c.withDefaults()
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

const rangeQuery = `
	SELECT e.id::text, e.expense_date, e.amount::text, COALESCE(e.description, ''),
	       c.id::text, c.name, c.icon
	FROM expenses e
	LEFT JOIN categories c ON c.id = e.category_id
	WHERE e.expense_date >= $1 AND e.expense_date <= $2`

const countQuery = `SELECT count(*) FROM expenses`

// Store reads expenses from a PostgreSQL database.
type Store struct {
	pool          *pgxpool.Pool
	logger        *slog.Logger
	retryAttempts uint
	retryDelay    time.Duration
}

// New connects to PostgreSQL and verifies the connection.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		"host", poolConfig.ConnConfig.Host,
		"port", poolConfig.ConnConfig.Port,
		"database", poolConfig.ConnConfig.Database,
	)

	if cfg.Migrate {
		if err := Migrate(cfg, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return &Store{
		pool:          pool,
		logger:        logger,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
	}, nil
}

// ExpensesInRange returns the expenses dated in [start, end] joined with their category.
// Expenses whose category is missing are returned with a nil Category.
func (s *Store) ExpensesInRange(ctx context.Context, start, end time.Time) ([]api.Expense, error) {
	var expenses []api.Expense

	err := s.withRetry(ctx, "expenses in range", func() error {
		expenses = expenses[:0]

		rows, err := s.pool.Query(ctx, rangeQuery, start, end)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id, amount, description string
				date                    time.Time
				catID, catName, catIcon *string
			)
			if err := rows.Scan(&id, &date, &amount, &description, &catID, &catName, &catIcon); err != nil {
				return fmt.Errorf("scanning expense row: %w", err)
			}

			exp := api.Expense{
				ID:          id,
				Date:        api.DateOf(date),
				Amount:      api.CoerceAmount(amount, id, s.logger),
				Description: description,
			}
			if catID != nil {
				exp.Category = &api.Category{ID: *catID, Name: deref(catName), Icon: deref(catIcon)}
			}
			expenses = append(expenses, exp)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}

	s.logger.Debug("fetched expenses",
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
		"count", len(expenses),
	)
	return expenses, nil
}

// CountExpenses returns the total number of expenses.
func (s *Store) CountExpenses(ctx context.Context) (int64, error) {
	var count int64
	err := s.withRetry(ctx, "count expenses", func() error {
		return s.pool.QueryRow(ctx, countQuery).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("counting expenses: %w", err)
	}
	return count, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) withRetry(ctx context.Context, op string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			if isTransient(err) {
				s.logger.Warn("transient database error, will retry", "op", op, "error", err)
				return true
			}
			return false
		}),
		retry.Attempts(s.retryAttempts),
		retry.Delay(s.retryDelay),
		retry.LastErrorOnly(true),
	)
}

// isTransient reports whether err is a connection-level failure worth retrying.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exception; 57P0x covers admin shutdown and startup.
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P")
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
