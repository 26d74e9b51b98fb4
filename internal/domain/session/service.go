package session

import "context"

// Controller orchestrates check-in, check-out and startup reconciliation
// for one employee against the attendance server of record.
type Controller interface {
	// CheckIn starts a session. A session already in progress locally is
	// refused before any network call; a server-side "already checked in"
	// conflict is reconciled into a running session with a soft notice.
	CheckIn(ctx context.Context) (CheckInResult, error)

	// CheckOut ends the in-progress session and records the
	// server-confirmed end instant and duration into today's record.
	CheckOut(ctx context.Context) (CheckOutResult, error)

	// Reconcile resolves persisted state against the server's
	// active-session truth. Called once when the controller is activated;
	// server state always wins over stale local state.
	Reconcile(ctx context.Context) error

	// Today returns a snapshot of today's session including live elapsed time.
	Today() TodayView

	// Phase returns the current per-day session phase.
	Phase() Phase

	// EmployeeID returns the identity this controller acts for, empty when
	// none was resolvable.
	EmployeeID() string

	// Close stops the live timer and releases controller resources.
	Close()
}
