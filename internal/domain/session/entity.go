package session

import "time"

// Phase is the per-day session state: NotStarted → InProgress → Completed.
// Completed is terminal for the day; a date change resets to NotStarted.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// State is the client-persisted session cache: enough to resume a visible
// timer after a restart, never enough to compute a paid duration. The
// authoritative session lives on the attendance server of record.
type State struct {
	StartISO string `json:"start_iso,omitempty"`
	Running  bool   `json:"running"`
}

// TodayRecord tracks the in-memory view of the current day's session.
type TodayRecord struct {
	Date        time.Time
	CheckInUTC  *time.Time
	CheckOutUTC *time.Time
	Minutes     int
	Phase       Phase
}

// RemoteCheckIn is the server's answer to a successful check-in.
type RemoteCheckIn struct {
	CheckInUTC    time.Time
	WorkDateLocal string
}

// RemoteCheckOut is the server's answer to a successful check-out.
// TotalMS is optional; when absent the client derives elapsed time from
// its own last-known start instant.
type RemoteCheckOut struct {
	CheckOutUTC time.Time
	TotalMS     *int64
}

// RemoteActiveSession describes the current open session, if any.
// A nil CheckOutUTC means the session is still running server-side.
type RemoteActiveSession struct {
	CheckInUTC  *time.Time
	CheckOutUTC *time.Time
}
