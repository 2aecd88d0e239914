// Package config loads spendlens configuration from defaults, an optional JSON file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	kJson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// FileEnvVar names the environment variable pointing at an optional JSON config file.
const FileEnvVar = "SPENDLENS_CONFIG"

// Config holds the application configuration.
type Config struct {
	// StoreBackend is the name of the store plugin to use (postgres, sqlite, memory).
	// Environment variable: STORE_BACKEND
	StoreBackend string `koanf:"STORE_BACKEND"`

	// SQLitePath is the database file used by the sqlite backend.
	// Environment variable: SQLITE_PATH
	SQLitePath string `koanf:"SQLITE_PATH"`

	// MemoryFixtures is a fixture file for the memory backend. Empty uses the built-in demo data.
	// Environment variable: MEMORY_FIXTURES
	MemoryFixtures string `koanf:"MEMORY_FIXTURES"`

	// StoreRetryAttempts and StoreRetryDelay tune retries of transient store errors.
	StoreRetryAttempts uint          `koanf:"STORE_RETRY_ATTEMPTS"`
	StoreRetryDelay    time.Duration `koanf:"STORE_RETRY_DELAY"`

	// MonthlyBudget is the budget the monthly progress ratio is measured against.
	// Environment variable: MONTHLY_BUDGET
	MonthlyBudget string `koanf:"MONTHLY_BUDGET"`

	// Currency is the currency code shown next to amounts.
	Currency string `koanf:"CURRENCY"`

	// Locale selects month labels and number formatting (BCP 47, e.g. vi-VN).
	Locale string `koanf:"LOCALE"`

	// Timezone is the IANA zone used to decide what "today" and "this month" are.
	Timezone string `koanf:"TIMEZONE"`

	// HTTPAddr is the listen address for the serve command.
	HTTPAddr string `koanf:"HTTP_ADDR"`

	// CORSAllowedOrigins is a comma-separated list of origins allowed by the HTTP API.
	CORSAllowedOrigins string `koanf:"CORS_ALLOWED_ORIGINS"`

	// LogLevel and LogFormat configure structured logging.
	LogLevel  string `koanf:"LOG_LEVEL"`
	LogFormat string `koanf:"LOG_FORMAT"`

	// PostgreSQL configuration (used by the postgres store plugin).
	Postgres PostgresConfig `koanf:"-"`
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	URL         string `koanf:"POSTGRES_URL"`
	Host        string `koanf:"POSTGRES_HOST"`
	Port        int    `koanf:"POSTGRES_PORT"`
	Database    string `koanf:"POSTGRES_DB"`
	User        string `koanf:"POSTGRES_USER"`
	Password    string `koanf:"POSTGRES_PASSWORD"`
	SSLMode     string `koanf:"POSTGRES_SSLMODE"`
	MaxPoolSize int    `koanf:"POSTGRES_MAX_POOL_SIZE"`
	Migrate     bool   `koanf:"POSTGRES_MIGRATE"`
}

func defaults() map[string]any {
	return map[string]any{
		"STORE_BACKEND":        "memory",
		"SQLITE_PATH":          "data/spendlens.db",
		"STORE_RETRY_ATTEMPTS": 3,
		"STORE_RETRY_DELAY":    "500ms",
		"MONTHLY_BUDGET":       "50000000",
		"CURRENCY":             "VND",
		"LOCALE":               "vi-VN",
		"TIMEZONE":             "Asia/Ho_Chi_Minh",
		"HTTP_ADDR":            ":8080",
		"LOG_LEVEL":            "INFO",
		"LOG_FORMAT":           "text",
		"POSTGRES_PORT":        5432,
		"POSTGRES_SSLMODE":     "disable",
	}
}

// Load builds the configuration. A JSON file is read when path is non-empty, or when
// SPENDLENS_CONFIG names one; environment variables override both.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(FileEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), kJson.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading config from environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := k.UnmarshalWithConf("", &cfg.Postgres, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling postgres config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration and reports every problem found.
func (c Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case "postgres":
		if c.Postgres.URL == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, errors.New("POSTGRES_HOST or POSTGRES_URL is required for the postgres backend"))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, errors.New("POSTGRES_DB is required for the postgres backend"))
			}
			if c.Postgres.User == "" {
				errs = append(errs, errors.New("POSTGRES_USER is required for the postgres backend"))
			}
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case "memory":
	case "":
		errs = append(errs, errors.New("STORE_BACKEND is required"))
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q (want postgres, sqlite or memory)", c.StoreBackend))
	}

	if _, err := c.Budget(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Budget parses MonthlyBudget. Zero or negative budgets are allowed and disable progress.
func (c Config) Budget() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(c.MonthlyBudget))
	if err != nil {
		return decimal.Zero, fmt.Errorf("MONTHLY_BUDGET %q is not a number", c.MonthlyBudget)
	}
	return d, nil
}

// Location loads the configured time zone. Empty means local time.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Clock returns a "now" function in the configured time zone.
func (c Config) Clock() (func() time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	return func() time.Time { return time.Now().In(loc) }, nil
}

// AllowedOrigins splits CORSAllowedOrigins into a list, dropping blanks.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
