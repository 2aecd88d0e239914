// Package report renders monthly stats and expense listings as text, JSON or CSV.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ArionMiles/spendlens/pkg/api"
)

// Stats is one month's summary together with how to present it.
type Stats struct {
	// Label is the formatted month, e.g. "Tháng 9, 2024".
	Label    string
	Year     int
	Month    int
	Currency string
	Stats    api.MonthlyStats
}

// Writer renders reports to an output stream.
type Writer interface {
	WriteStats(w io.Writer, r Stats) error
	WriteExpenses(w io.Writer, expenses []api.Expense) error
}

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "csv"}

// New returns the writer for format. Text output groups digits for the given locale.
func New(format, locale string) (Writer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewText(locale), nil
	case "json":
		return &JSON{Indent: "  "}, nil
	case "csv":
		return &CSV{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// AmountFormatter renders amounts with locale-aware digit grouping.
type AmountFormatter struct {
	printer *message.Printer
}

// NewAmountFormatter creates a formatter for a BCP 47 locale. Malformed locales fall back to English.
func NewAmountFormatter(locale string) AmountFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return AmountFormatter{printer: message.NewPrinter(tag)}
}

// Format renders d with at most two fraction digits, e.g. "11.320.000" for vi-VN.
func (f AmountFormatter) Format(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

// Percent renders a ratio in [0, 1] as a whole percentage.
func (f AmountFormatter) Percent(ratio float64) string {
	return f.printer.Sprint(number.Percent(ratio, number.MaxFractionDigits(0)))
}
