package session

// CheckInResult is handed back to the portal after a check-in attempt.
// Notice carries the soft informational message used when the server
// reported an already-running session and the controller reconciled
// instead of failing.
type CheckInResult struct {
	Today     TodayView `json:"today"`
	Notice    string    `json:"notice,omitempty"`
	Reclaimed bool      `json:"reclaimed,omitempty"`
}

// CheckOutResult is handed back to the portal after a successful check-out.
type CheckOutResult struct {
	Today    TodayView `json:"today"`
	Duration string    `json:"duration"`
}

// TodayView is the serializable snapshot of today's session.
type TodayView struct {
	Date           string `json:"date"`
	Phase          Phase  `json:"phase"`
	TimeIn         string `json:"time_in"`
	TimeOut        string `json:"time_out"`
	Minutes        int    `json:"minutes"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
	ElapsedDisplay string `json:"elapsed_display"`
}
