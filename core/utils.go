package core

import (
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used by sessions, attendance and due dates.
const DateLayout = "2006-01-02"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanStrings cleans every item of ss and drops the blank ones.
func CleanStrings(ss []string) []string {
	cleaned := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = CleanString(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

// Round rounds half away from zero, which for the non-negative percentages we handle is half-up.
func Round(x float64) int {
	return int(math.Round(x))
}

// Percent returns round(part / total * 100), or 0 when total is 0.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return Round(float64(part) / float64(total) * 100)
}

// Today returns the current calendar day in DateLayout.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// ParseDate parses a DateLayout calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
