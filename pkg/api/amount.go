package api

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a raw amount cannot be read as a number.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount reads a raw amount column value. Surrounding whitespace is ignored.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return d, nil
}

// CoerceAmount is the lenient form of ParseAmount used by stores: malformed values
// count as zero and are logged against the expense id.
func CoerceAmount(raw, expenseID string, logger *slog.Logger) decimal.Decimal {
	d, err := ParseAmount(raw)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("treating malformed amount as zero",
			"expense_id", expenseID,
			"raw", raw,
			"error", err,
		)
		return decimal.Zero
	}
	return d
}
