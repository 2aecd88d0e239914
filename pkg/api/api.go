// Package api defines the core interfaces and data structures for spendlens.
package api

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate go tool mockgen -destination=apimock/store.go -package=apimock . ExpenseStore

// Expense is a single recorded expense as returned by a store.
type Expense struct {
	ID string `json:"id"`
	// Date is the calendar date of the expense, at midnight UTC.
	Date        time.Time       `json:"expenseDate"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	// Category is nil when the row references no category or a missing one.
	Category *Category `json:"category,omitempty"`
}

// Category is a spending category joined onto an expense.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// CategoryAggregate is the month total for a single category.
type CategoryAggregate struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Icon   string          `json:"icon,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthlyStats is the derived summary for one calendar month.
type MonthlyStats struct {
	MonthlyTotal    decimal.Decimal     `json:"monthlyTotal"`
	DailyTotal      decimal.Decimal     `json:"dailyTotal"`
	TopCategories   []CategoryAggregate `json:"topCategories"`
	MonthlyProgress float64             `json:"monthlyProgress"`
	ExpenseCount    int                 `json:"expenseCount"`
	ShowDailyCard   bool                `json:"showDailyCard"`
}

// EmptyStats returns the all-zero summary shown before the first load and after a failed one.
func EmptyStats() MonthlyStats {
	return MonthlyStats{
		MonthlyTotal:  decimal.Zero,
		DailyTotal:    decimal.Zero,
		TopCategories: []CategoryAggregate{},
	}
}

// ConnectionStatus is the outcome of a store connectivity probe.
type ConnectionStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   *int64 `json:"count,omitempty"`
}

// NewDate returns the calendar date year-month-day at midnight UTC.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf returns the calendar date of t, read in t's own location, at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ExpenseStore is the read-only data access capability the stats engine depends on.
type ExpenseStore interface {
	// ExpensesInRange returns every expense whose date lies in [start, end], inclusive,
	// joined with its category.
	ExpensesInRange(ctx context.Context, start, end time.Time) ([]Expense, error)
	// CountExpenses returns the total number of expenses in the store.
	CountExpenses(ctx context.Context) (int64, error)
}

// Store is an ExpenseStore that holds resources until closed.
type Store interface {
	ExpenseStore
	Close() error
}
