package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ArionMiles/spendlens/pkg/api"
)

// CSV renders reports as comma-separated rows with a header line.
type CSV struct{}

// WriteStats writes one row per metric followed by one row per top category.
func (c *CSV) WriteStats(w io.Writer, r Stats) error {
	s := r.Stats
	rows := [][]string{
		{"kind", "id", "name", "value"},
		{"month", "", r.Label, fmt.Sprintf("%04d-%02d", r.Year, r.Month)},
		{"total", "", "monthly", s.MonthlyTotal.String()},
		{"total", "", "daily", s.DailyTotal.String()},
		{"progress", "", "monthly", strconv.FormatFloat(s.MonthlyProgress, 'f', 4, 64)},
		{"count", "", "expenses", strconv.Itoa(s.ExpenseCount)},
	}
	for _, cat := range s.TopCategories {
		rows = append(rows, []string{"category", cat.ID, cat.Name, cat.Amount.String()})
	}
	return c.write(w, rows)
}

// WriteExpenses writes one row per expense.
func (c *CSV) WriteExpenses(w io.Writer, expenses []api.Expense) error {
	rows := [][]string{{"id", "date", "amount", "category_id", "category", "description"}}
	for _, e := range expenses {
		var catID, catName string
		if e.Category != nil {
			catID, catName = e.Category.ID, e.Category.Name
		}
		rows = append(rows, []string{e.ID, e.Date.Format(time.DateOnly), e.Amount.String(), catID, catName, e.Description})
	}
	return c.write(w, rows)
}

func (c *CSV) write(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
