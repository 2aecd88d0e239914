package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ArionMiles/spendlens/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestNew_ConnectionFailure tests that the store returns an error when connection fails.
func TestNew_ConnectionFailure(t *testing.T) {
	cfg := Config{
		Host:     "nonexistent-host.invalid",
		Port:     5432,
		Database: "spendlens",
		User:     "spendlens",
		Password: "password",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := New(ctx, cfg, testLogger())
	if err == nil {
		t.Error("expected error when connecting to nonexistent host, got nil")
	}
}

func TestConfig_ConnString(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "defaults applied",
			cfg:  Config{Host: "db", Database: "spendlens", User: "u", Password: "p"},
			want: "host=db port=5432 user=u password=p dbname=spendlens sslmode=disable",
		},
		{
			name: "url wins",
			cfg:  Config{URL: "postgres://u:p@db:6543/x?sslmode=require", Host: "ignored"},
			want: "postgres://u:p@db:6543/x?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ConnString(); got != tt.want {
				t.Errorf("ConnString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_MigrationURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{
			name: "from fields",
			cfg:  Config{Host: "db", Database: "spendlens", User: "u", Password: "p@ss"},
			want: "pgx5://u:p%40ss@db:5432/spendlens?sslmode=disable",
		},
		{
			name: "from url",
			cfg:  Config{URL: "postgresql://u:p@db.supabase.co:5432/postgres?sslmode=require"},
			want: "pgx5://u:p@db.supabase.co:5432/postgres?sslmode=require",
		},
		{
			name:    "keyword string rejected",
			cfg:     Config{URL: "host=db user=u"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.migrationURL()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("migrationURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: false},
		{name: "connection exception", err: &pgconn.PgError{Code: "08006"}, want: true},
		{name: "cannot connect now", err: &pgconn.PgError{Code: "57P03"}, want: true},
		{name: "undefined table", err: &pgconn.PgError{Code: "42P01"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransient(tt.err); got != tt.want {
				t.Errorf("isTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// startPostgres runs a throwaway PostgreSQL container, or uses TEST_POSTGRES_URL when set.
func startPostgres(t *testing.T) Config {
	t.Helper()

	if url := os.Getenv("TEST_POSTGRES_URL"); url != "" {
		return Config{URL: url}
	}
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("spendlens"),
		tcpostgres.WithUsername("spendlens"),
		tcpostgres.WithPassword("spendlens"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	t.Cleanup(func() {
		if ctr == nil {
			return
		}
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Errorf("terminating postgres container: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("reading connection string: %v", err)
	}
	return Config{URL: connStr}
}

func TestStore_Integration(t *testing.T) {
	cfg := startPostgres(t)
	cfg.Migrate = true

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, err := New(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	// Migrations are idempotent.
	if err := Migrate(cfg, testLogger()); err != nil {
		t.Fatalf("re-running migrations: %v", err)
	}

	seed := `
		TRUNCATE expenses, categories;
		INSERT INTO categories (id, name, icon) VALUES
			('00000000-0000-0000-0000-000000000001', 'Thực phẩm', 'restaurant'),
			('00000000-0000-0000-0000-000000000002', 'Di chuyển', NULL);
		INSERT INTO expenses (expense_date, amount, description, category_id) VALUES
			('2024-09-01', 5250000, 'Đi chợ', '00000000-0000-0000-0000-000000000001'),
			('2024-09-30', 3180000.50, NULL, '00000000-0000-0000-0000-000000000002'),
			('2024-09-15', 1000, 'Gửi xe', NULL),
			('2024-10-01', 999, 'next month', '00000000-0000-0000-0000-000000000001');`
	if _, err := store.pool.Exec(ctx, seed); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	expenses, err := store.ExpensesInRange(ctx, api.NewDate(2024, time.September, 1), api.NewDate(2024, time.September, 30))
	if err != nil {
		t.Fatalf("ExpensesInRange: %v", err)
	}
	if len(expenses) != 3 {
		t.Fatalf("expected 3 expenses in September, got %d", len(expenses))
	}

	total := decimal.Zero
	var uncategorized int
	for _, e := range expenses {
		total = total.Add(e.Amount)
		if e.Category == nil {
			uncategorized++
			continue
		}
		if e.Category.Name == "Di chuyển" && e.Category.Icon != "" {
			t.Errorf("expected empty icon for NULL column, got %q", e.Category.Icon)
		}
	}
	if want := decimal.RequireFromString("8431000.50"); !total.Equal(want) {
		t.Errorf("total = %s, want %s", total, want)
	}
	if uncategorized != 1 {
		t.Errorf("expected 1 uncategorized expense, got %d", uncategorized)
	}

	count, err := store.CountExpenses(ctx)
	if err != nil {
		t.Fatalf("CountExpenses: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}
