package utils

import "time"

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddYears moves t by n calendar years.
func AddYears(t time.Time, n int) time.Time {
	return t.AddDate(n, 0, 0)
}

// MonthsBetween counts calendar-month boundaries from `from` to `to`.
// Days of month are ignored; the result is negative when to precedes from.
func MonthsBetween(from, to time.Time) int {
	fy, fm, _ := from.Date()
	ty, tm, _ := to.Date()
	return (ty-fy)*12 + int(tm-fm)
}

// FirstOfNextMonth returns midnight of the first day of the month after t.
func FirstOfNextMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
}

// ParseDate accepts the date layouts clients send.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
