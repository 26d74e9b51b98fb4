package session

import "errors"

// Session domain errors
var (
	// Precondition violations, rejected locally before any network call.
	ErrAlreadyCheckedIn = errors.New("a session is already in progress for today")
	ErrNotCheckedIn     = errors.New("no session is in progress for today")
	ErrRequestInFlight  = errors.New("a check-in or check-out request is already pending")

	// Configuration problems, not retried automatically.
	ErrMissingEmployeeID = errors.New("no employee identity is configured for the attendance view")
)
