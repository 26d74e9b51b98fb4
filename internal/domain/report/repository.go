package report

import "context"

// EventSource supplies one month of raw attendance events for an employee.
// Implementations normalize the remote payload into AttendanceEvent and
// absorb malformed per-item time data into nil fields rather than failing
// the whole month.
type EventSource interface {
	MonthEvents(ctx context.Context, employeeID string, year, month int) ([]AttendanceEvent, error)
}
