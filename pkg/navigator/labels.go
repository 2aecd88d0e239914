package navigator

import (
	"fmt"

	"golang.org/x/text/language"
)

// Labels formats a Selection for display.
type Labels struct {
	Tag    language.Tag
	Months [12]string
	// Layout receives the month label and the year.
	Layout string
}

// Format renders sel using the label table. Out-of-range months render as the bare year.
func (l Labels) Format(sel Selection) string {
	if !sel.Valid() {
		return fmt.Sprintf("%d", sel.Year)
	}
	return fmt.Sprintf(l.Layout, l.Months[sel.Month-1], sel.Year)
}

// VietnameseLabels renders "Tháng 9, 2024".
var VietnameseLabels = Labels{
	Tag: language.Vietnamese,
	Months: [12]string{
		"Tháng 1", "Tháng 2", "Tháng 3", "Tháng 4", "Tháng 5", "Tháng 6",
		"Tháng 7", "Tháng 8", "Tháng 9", "Tháng 10", "Tháng 11", "Tháng 12",
	},
	Layout: "%s, %d",
}

// EnglishLabels renders "September 2024".
var EnglishLabels = Labels{
	Tag: language.English,
	Months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	Layout: "%s %d",
}

var (
	supportedLabels = []Labels{VietnameseLabels, EnglishLabels}
	labelMatcher    = language.NewMatcher([]language.Tag{VietnameseLabels.Tag, EnglishLabels.Tag})
)

// LabelsFor picks the closest label table for a BCP 47 locale such as "vi-VN" or "en".
// Unknown or malformed locales fall back to Vietnamese.
func LabelsFor(locale string) Labels {
	tag, err := language.Parse(locale)
	if err != nil {
		return VietnameseLabels
	}
	_, index, confidence := labelMatcher.Match(tag)
	if confidence == language.No {
		return VietnameseLabels
	}
	return supportedLabels[index]
}
