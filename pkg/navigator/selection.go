package navigator

import (
	"fmt"
	"time"
)

// Selection is the (year, month) currently being viewed. Month is 1-based.
type Selection struct {
	Year  int `json:"selectedYear"`
	Month int `json:"selectedMonth"`
}

// SelectionOf returns the selection containing t.
func SelectionOf(t time.Time) Selection {
	return Selection{Year: t.Year(), Month: int(t.Month())}
}

// Valid reports whether the month lies in 1..12.
func (s Selection) Valid() bool {
	return s.Month >= 1 && s.Month <= 12
}

// Previous returns the month before s, rolling January back into December of the prior year.
func (s Selection) Previous() Selection {
	if s.Month == 1 {
		return Selection{Year: s.Year - 1, Month: 12}
	}
	return Selection{Year: s.Year, Month: s.Month - 1}
}

// Next returns the month after s, rolling December forward into January of the next year.
func (s Selection) Next() Selection {
	if s.Month == 12 {
		return Selection{Year: s.Year + 1, Month: 1}
	}
	return Selection{Year: s.Year, Month: s.Month + 1}
}

func (s Selection) String() string {
	return fmt.Sprintf("%04d-%02d", s.Year, s.Month)
}
