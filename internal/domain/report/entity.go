package report

import "time"

// Raw statuses reported by the attendance server of record.
const (
	RawStatusPresent = "PRESENT"
	RawStatusWeekend = "WEEKEND"
	RawStatusAbsent  = "ABSENT"
)

// AttendanceEvent is one day of raw punches for one employee, normalized
// at the ingestion boundary from the remote month-report payload. The
// server owns these records; the policy engine treats them as read-only.
type AttendanceEvent struct {
	// Date is midnight of the local work day.
	Date time.Time

	// FirstCheckIn and LastCheckOut are UTC instants; nil when the server
	// omitted them or sent something unparseable.
	FirstCheckIn *time.Time
	LastCheckOut *time.Time

	SecondsWorked int
	RawStatus     string
}

// HasRealWork reports whether the event carries actual recorded work:
// a worked duration or at least one punch. Policy synthesis (weekend,
// half-day Saturday) never overrides a day with real work.
func (e AttendanceEvent) HasRealWork() bool {
	return e.SecondsWorked > 0 || e.FirstCheckIn != nil || e.LastCheckOut != nil
}
