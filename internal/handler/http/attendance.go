package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hrportal/attendance-widget-go/internal/domain/report"
	"github.com/hrportal/attendance-widget-go/internal/domain/session"
	"github.com/hrportal/attendance-widget-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Calendar(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	controller    session.Controller
	reportService report.ReportService
}

func NewAttendanceHandler(controller session.Controller, reportService report.ReportService) AttendanceHandler {
	return &attendanceHandlerImpl{
		controller:    controller,
		reportService: reportService,
	}
}

// CheckIn implements AttendanceHandler. A fresh check-in answers 201; a
// check-in the server reports as already open resumes the session and
// answers 200 with an explanatory message instead of an error.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	result, err := h.controller.CheckIn(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Reclaimed {
		response.SuccessWithMessage(w, result.Notice, result.Today)
		return
	}
	response.Created(w, "Checked in", result.Today)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	result, err := h.controller.CheckOut(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.controller.Today())
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reportService.Summary(r.Context(), monthQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// Calendar implements AttendanceHandler.
func (h *attendanceHandlerImpl) Calendar(w http.ResponseWriter, r *http.Request) {
	view, err := h.reportService.Calendar(r.Context(), monthQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, view)
}

// monthQuery reads year and month from the query string, defaulting to the
// current month. Out-of-range values pass through so the service can
// answer with a field-level validation error.
func monthQuery(r *http.Request) report.MonthQuery {
	now := time.Now()
	query := report.MonthQuery{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if raw := r.URL.Query().Get("year"); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil {
			query.Year = year
		}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		if month, err := strconv.Atoi(raw); err == nil {
			query.Month = month
		}
	}

	return query
}
