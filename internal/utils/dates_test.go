package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthsBetween(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 10, 0, 0, 0, time.UTC) }

	assert.Equal(t, 0, MonthsBetween(d(2025, 3, 1), d(2025, 3, 31)))
	assert.Equal(t, 1, MonthsBetween(d(2025, 3, 31), d(2025, 4, 1)))
	assert.Equal(t, 24, MonthsBetween(d(2024, 1, 15), d(2026, 1, 15)))
	assert.Equal(t, -2, MonthsBetween(d(2025, 5, 1), d(2025, 3, 1)))
	assert.Equal(t, 13, MonthsBetween(d(2024, 12, 1), d(2026, 1, 1)))
}

func TestFirstOfNextMonth(t *testing.T) {
	got := FirstOfNextMonth(time.Date(2025, 12, 17, 15, 4, 5, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got)

	got = FirstOfNextMonth(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestStartOfDayAndAdd(t *testing.T) {
	now := time.Date(2024, 2, 28, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), AddDays(StartOfDay(now), 1))
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), AddYears(StartOfDay(now), 2))
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2025-06-01")
	assert.True(t, ok)
	assert.Equal(t, time.June, got.Month())

	_, ok = ParseDate("01/06/2025")
	assert.False(t, ok)
}
