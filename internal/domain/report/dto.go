package report

import (
	"fmt"
	"time"

	"github.com/hrportal/attendance-widget-go/internal/pkg/validator"
)

// Label classifies one calendar day.
type Label string

const (
	LabelPresent         Label = "present"
	LabelAbsent          Label = "absent"
	LabelWeekend         Label = "weekend"
	LabelInProgress      Label = "in_progress"
	LabelMissingCheckout Label = "missing_checkout"
)

// DayRecord is the derived, view-only classification of one day.
// Rebuilt on every derivation call and never persisted.
type DayRecord struct {
	Date          string `json:"date"` // YYYY-MM-DD
	TimeIn        string `json:"time_in"`
	TimeOut       string `json:"time_out"`
	Label         Label  `json:"label"`
	MinutesWorked int    `json:"minutes_worked"`
	Duration      string `json:"duration"`
}

// MonthSummary is the classified month plus its aggregates. Recomputed on
// every fetch; immutable once produced.
type MonthSummary struct {
	Year          int         `json:"year"`
	Month         int         `json:"month"`
	Rows          []DayRecord `json:"rows"`
	PresentCount  int         `json:"present_count"`
	AbsentCount   int         `json:"absent_count"`
	TotalMinutes  int         `json:"total_minutes"`
	TotalDuration string      `json:"total_duration"`
}

// CalendarCell is one grid cell: a date, its classification when the date
// belongs to the requested month, and presentation flags. Adjacent-month
// dates appear only as blank filler.
type CalendarCell struct {
	Date              string     `json:"date"` // YYYY-MM-DD
	Day               int        `json:"day"`
	InMonth           bool       `json:"in_month"`
	Record            *DayRecord `json:"record,omitempty"`
	IsToday           bool       `json:"is_today"`
	HasRunningSession bool       `json:"has_running_session"`
	IsMissingCheckout bool       `json:"is_missing_checkout"`
}

// CalendarWeek is one Sunday-aligned row of the month grid.
type CalendarWeek struct {
	Cells [7]CalendarCell `json:"cells"`
}

// CalendarView is the week-aligned rendering of a classified month.
type CalendarView struct {
	Year    int            `json:"year"`
	Month   int            `json:"month"`
	Weeks   []CalendarWeek `json:"weeks"`
	Summary MonthSummary   `json:"summary"`
}

// MonthQuery identifies a requested month.
type MonthQuery struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (q *MonthQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.Month < 1 || q.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	currentYear := time.Now().Year()
	if q.Year < 2020 || q.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2020 and %d", currentYear+1),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
