package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/dailyfocus/internal/constants"
)

// MonthGrid lays out the month containing t as Sunday-first weeks.
// Cells outside the month are 0.
func MonthGrid(t time.Time) [][]int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	daysInMonth := first.AddDate(0, 1, -1).Day()

	cells := make([]int, 0, 42)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, 0)
	}
	for day := 1; day <= daysInMonth; day++ {
		cells = append(cells, day)
	}
	for len(cells)%7 != 0 {
		cells = append(cells, 0)
	}

	weeks := make([][]int, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// ShiftByMonths moves to the first day of the month delta months away.
// Anchoring on day 1 avoids Jan 31 + 1 month landing in March.
func ShiftByMonths(t time.Time, delta int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, delta, 0)
}

// ParseMonth parses a YYYY-MM string into the first day of that month in loc
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.Parse(constants.MonthFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM)", ErrInvalidDate, s)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc), nil
}
