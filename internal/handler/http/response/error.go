package response

import (
	"errors"
	"net/http"

	"github.com/hrportal/attendance-widget-go/internal/domain/report"
	"github.com/hrportal/attendance-widget-go/internal/domain/session"
	"github.com/hrportal/attendance-widget-go/internal/pkg/hrapi"
	"github.com/hrportal/attendance-widget-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Session domain errors
	case errors.Is(err, session.ErrMissingEmployeeID):
		ValidationError(w, map[string]string{
			"employee_id": "No employee identity is configured; set ATTENDANCE_EMPLOYEE_ID before using the widget",
		})
	case errors.Is(err, session.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, session.ErrRequestInFlight):
		Conflict(w, "A check-in or check-out request is already in flight")
	case errors.Is(err, session.ErrNotCheckedIn):
		BadRequest(w, "No running session to check out of", nil)

	// Report domain errors
	case errors.Is(err, report.ErrReportFetch):
		BadGateway(w, "The attendance server did not return the month report")

	// Anything carrying an upstream status is the remote server's fault
	case isUpstream(err):
		BadGateway(w, "The attendance server rejected the request")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

func isUpstream(err error) bool {
	var apiErr *hrapi.APIError
	return errors.As(err, &apiErr)
}
