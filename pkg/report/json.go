package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ArionMiles/spendlens/pkg/api"
)

// JSON renders reports as JSON documents.
type JSON struct {
	Indent string
}

type statsDocument struct {
	Label    string `json:"label"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Currency string `json:"currency,omitempty"`
	api.MonthlyStats
}

// WriteStats writes the summary as a single JSON object.
func (j *JSON) WriteStats(w io.Writer, r Stats) error {
	return j.encode(w, statsDocument{
		Label:        r.Label,
		Year:         r.Year,
		Month:        r.Month,
		Currency:     r.Currency,
		MonthlyStats: r.Stats,
	})
}

// WriteExpenses writes the expenses as a JSON array.
func (j *JSON) WriteExpenses(w io.Writer, expenses []api.Expense) error {
	if expenses == nil {
		expenses = []api.Expense{}
	}
	return j.encode(w, expenses)
}

func (j *JSON) encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", j.Indent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
