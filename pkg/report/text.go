package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ArionMiles/spendlens/pkg/api"
)

const progressBarWidth = 20

// Text renders human-readable reports.
type Text struct {
	amounts AmountFormatter
}

// NewText creates a text writer for the given locale.
func NewText(locale string) *Text {
	return &Text{amounts: NewAmountFormatter(locale)}
}

// WriteStats renders a monthly summary.
func (t *Text) WriteStats(w io.Writer, r Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	s := r.Stats

	fmt.Fprintf(tw, "%s\n\n", r.Label)
	fmt.Fprintf(tw, "Monthly total:\t%s %s\n", t.amounts.Format(s.MonthlyTotal), r.Currency)
	if s.ShowDailyCard {
		fmt.Fprintf(tw, "Today:\t%s %s\n", t.amounts.Format(s.DailyTotal), r.Currency)
	}
	fmt.Fprintf(tw, "Budget used:\t%s %s\n", ProgressBar(s.MonthlyProgress, progressBarWidth), t.amounts.Percent(s.MonthlyProgress))
	fmt.Fprintf(tw, "Expenses:\t%d\n", s.ExpenseCount)

	if len(s.TopCategories) > 0 {
		fmt.Fprintf(tw, "\nTop categories:\n")
		for i, c := range s.TopCategories {
			fmt.Fprintf(tw, "  %d. %s\t%s %s\n", i+1, c.Name, t.amounts.Format(c.Amount), r.Currency)
		}
	}

	return tw.Flush()
}

// WriteExpenses renders an expense listing, one row per expense.
func (t *Text) WriteExpenses(w io.Writer, expenses []api.Expense) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, e := range expenses {
		category := "-"
		if e.Category != nil {
			category = e.Category.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Date.Format(time.DateOnly), t.amounts.Format(e.Amount), category, e.Description)
	}
	return tw.Flush()
}

// ProgressBar draws ratio as a fixed-width bar of '#' and '.'.
func ProgressBar(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*float64(width) + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
