package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dailyfocus/internal/constants"
	"github.com/julianstephens/dailyfocus/internal/models"
)

// ErrInvalidDate is returned for dates that cannot be turned into a DateKey
var ErrInvalidDate = errors.New("invalid date")

// ToDateKey returns the YYYY-MM-DD key of t in t's own location.
// Every instant within the same calendar day yields the same key.
func ToDateKey(t time.Time) (models.DateKey, error) {
	if t.IsZero() || t.Year() < 1 || t.Year() > 9999 {
		return "", fmt.Errorf("%w: %v", ErrInvalidDate, t)
	}
	return models.DateKey(t.Format(constants.DateFormat)), nil
}

// ToDateKeyIn returns the date key of t as observed in loc
func ToDateKeyIn(t time.Time, loc *time.Location) (models.DateKey, error) {
	if loc == nil {
		loc = time.Local
	}
	return ToDateKey(t.In(loc))
}

// ParseDateKey parses a YYYY-MM-DD string and returns midnight of that day in loc
func ParseDateKey(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ToDisplayString formats t in long form, e.g. "Tuesday, September 30, 2025"
func ToDisplayString(t time.Time) string {
	return t.Format(constants.DisplayDateFormat)
}

// IsSameDay compares the calendar day of a and b, with b observed in a's location
func IsSameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsToday reports whether t falls on the current calendar day in t's location
func IsToday(t time.Time) bool {
	return IsSameDay(t, time.Now())
}

// ShiftByDays moves t by delta whole calendar days, rolling over months and years.
// The wall-clock time is preserved across DST changes.
func ShiftByDays(t time.Time, delta int) time.Time {
	return t.AddDate(0, 0, delta)
}

// StartOfDay returns midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// GetTodayInTimezone returns today's date key in the specified timezone.
// "Today" is determined by the user's configured timezone, not the system timezone.
func GetTodayInTimezone(timezone string) (models.DateKey, error) {
	now, err := NowInTimezone(timezone)
	if err != nil {
		return "", err
	}
	return ToDateKey(now)
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// ResolveDate turns user input ("today", "yesterday", "tomorrow" or YYYY-MM-DD)
// into a date in loc. Empty input means today.
func ResolveDate(input string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	today := StartOfDay(time.Now().In(loc))
	switch input {
	case "", "today":
		return today, nil
	case "yesterday":
		return ShiftByDays(today, -1), nil
	case "tomorrow":
		return ShiftByDays(today, 1), nil
	}
	return ParseDateKey(input, loc)
}
