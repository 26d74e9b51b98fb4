package timeutil

import (
	"fmt"
	"time"
)

// NoValue is the display placeholder for missing or malformed time data.
// Rendering a sentinel instead of failing keeps one bad row from taking
// down a whole month view.
const NoValue = "—"

// ParseInstant parses an ISO-8601 instant. It returns nil for empty or
// malformed input rather than an error; callers render NoValue instead.
func ParseInstant(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil
		}
	}
	return &t
}

// ClockDisplay formats an instant as a local time of day ("15:04").
// Nil or zero instants render as NoValue.
func ClockDisplay(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return NoValue
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("15:04")
}

// FormatMinutes formats a minute count as "{hours}h {minutes:02}m".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// FormatElapsed formats a duration as "HH:MM:SS" for the live timer display.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
