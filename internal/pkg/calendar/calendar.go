// Package calendar holds the pure date arithmetic behind the monthly
// attendance policy: day-of-week, nth-Saturday indexing and month bounds.
// Every function takes its reference instant explicitly so tests stay
// deterministic.
package calendar

import "time"

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day zero of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Weekday returns the day of week for a date (Sunday = 0).
func Weekday(year int, month time.Month, day int) time.Weekday {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday()
}

// NthSaturday returns the 1-based index of a Saturday within its month,
// given the day of month. The caller is responsible for ensuring the day
// actually falls on a Saturday.
func NthSaturday(day int) int {
	return ((day - 1) / 7) + 1
}

// IsFutureMonth reports whether year/month is strictly after the month
// containing now.
func IsFutureMonth(year int, month time.Month, now time.Time) bool {
	if year != now.Year() {
		return year > now.Year()
	}
	return month > now.Month()
}

// IsCurrentMonth reports whether year/month is the month containing now.
func IsCurrentMonth(year int, month time.Month, now time.Time) bool {
	return year == now.Year() && month == now.Month()
}

// MidnightOf truncates t to the start of its calendar day in t's location.
func MidnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
