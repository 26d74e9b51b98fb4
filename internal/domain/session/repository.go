package session

import "context"

// Store is the persisted session cache. It must survive a process restart
// and be visible to every portal tab, but it is a UX convenience only:
// reconciliation always prefers server-reported state over whatever is
// persisted here.
type Store interface {
	// Get returns the persisted state. A missing record is the zero State.
	Get() (State, error)

	// Set overwrites the persisted state.
	Set(State) error

	// Clear removes the persisted state entirely.
	Clear() error
}

// RemoteGateway is the authoritative attendance service consumed by the
// controller. Implementations translate transport-level failures into
// errors the controller can classify.
type RemoteGateway interface {
	// CheckIn requests a new session start for the employee.
	CheckIn(ctx context.Context, employeeID string) (RemoteCheckIn, error)

	// CheckOut requests the end of the open session, passing the known
	// start instant so both sides agree on elapsed time.
	CheckOut(ctx context.Context, employeeID string, startISO string) (RemoteCheckOut, error)

	// ActiveSession returns the current open session, or nil when the
	// server reports none.
	ActiveSession(ctx context.Context, employeeID string) (*RemoteActiveSession, error)
}
