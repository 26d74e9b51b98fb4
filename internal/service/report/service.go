package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrportal/attendance-widget-go/internal/domain/report"
	"github.com/hrportal/attendance-widget-go/internal/domain/session"
	"github.com/hrportal/attendance-widget-go/internal/pkg/calendar"
	"github.com/hrportal/attendance-widget-go/internal/pkg/clock"
	"github.com/hrportal/attendance-widget-go/internal/pkg/timeutil"
)

// Half-day Saturday synthesis: the 1st and 3rd Saturday of a month count
// as working half-days from 10:00 to 14:00 local time unless the server
// recorded real work for that date.
const (
	halfDayStart   = "10:00"
	halfDayEnd     = "14:00"
	halfDayMinutes = 240
)

type ReportServiceImpl struct {
	source     report.EventSource
	sessions   session.RemoteGateway
	clk        clock.Clock
	loc        *time.Location
	employeeID string
}

func NewReportService(
	source report.EventSource,
	sessions session.RemoteGateway,
	clk clock.Clock,
	loc *time.Location,
	employeeID string,
) report.ReportService {
	if clk == nil {
		clk = clock.System()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportServiceImpl{
		source:     source,
		sessions:   sessions,
		clk:        clk,
		loc:        loc,
		employeeID: employeeID,
	}
}

// Summary implements report.ReportService.
func (s *ReportServiceImpl) Summary(ctx context.Context, req report.MonthQuery) (report.MonthSummary, error) {
	if err := req.Validate(); err != nil {
		return report.MonthSummary{}, err
	}
	if s.employeeID == "" {
		return report.MonthSummary{}, session.ErrMissingEmployeeID
	}

	events, err := s.source.MonthEvents(ctx, s.employeeID, req.Year, req.Month)
	if err != nil {
		return report.MonthSummary{}, fmt.Errorf("%w: %v", report.ErrReportFetch, err)
	}

	rows := ClassifyMonth(events, req.Year, req.Month, s.clk.Now().In(s.loc))
	return summarize(req.Year, req.Month, rows), nil
}

// Calendar implements report.ReportService. The month events and the
// active-session lookup are independent remote calls, so they run in
// parallel.
func (s *ReportServiceImpl) Calendar(ctx context.Context, req report.MonthQuery) (report.CalendarView, error) {
	if err := req.Validate(); err != nil {
		return report.CalendarView{}, err
	}
	if s.employeeID == "" {
		return report.CalendarView{}, session.ErrMissingEmployeeID
	}

	now := s.clk.Now().In(s.loc)

	var (
		events  []report.AttendanceEvent
		running bool
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := s.source.MonthEvents(gCtx, s.employeeID, req.Year, req.Month)
		if err != nil {
			return fmt.Errorf("%w: %v", report.ErrReportFetch, err)
		}
		events = data
		return nil
	})

	// The running flag only matters when today falls inside the requested
	// month, so skip the lookup otherwise.
	if calendar.IsCurrentMonth(req.Year, time.Month(req.Month), now) {
		g.Go(func() error {
			active, err := s.sessions.ActiveSession(gCtx, s.employeeID)
			if err != nil {
				// A failed lookup degrades the flag, not the whole view.
				return nil
			}
			running = active != nil && active.CheckInUTC != nil && active.CheckOutUTC == nil
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report.CalendarView{}, err
	}

	rows := ClassifyMonth(events, req.Year, req.Month, now)
	summary := summarize(req.Year, req.Month, rows)

	return BuildGrid(summary, now, running), nil
}

// ClassifyMonth derives one DayRecord per applicable day of the requested
// month from the raw server events. The function is pure: the same events,
// month and reference instant always produce the same rows, and the input
// slice is never mutated.
//
// Rules, in order of precedence for each day:
//   - A day with real recorded work keeps its server-derived
//     classification, weekend or not.
//   - Sundays without real work are Weekend.
//   - The 1st and 3rd Saturday without real work become a synthesized
//     half-day: Present, 10:00 to 14:00, 240 minutes. Other Saturdays
//     without real work are Weekend.
//   - Any other day without an event is Absent.
//
// A current month only covers days up to today. A future month is passed
// through verbatim: only days the server reported appear, with no
// synthesis and no gap-fill. Rows come back sorted by date descending.
func ClassifyMonth(events []report.AttendanceEvent, year, month int, now time.Time) []report.DayRecord {
	m := time.Month(month)

	byDay := make(map[int]report.AttendanceEvent, len(events))
	for _, ev := range events {
		if ev.Date.Year() == year && ev.Date.Month() == m {
			byDay[ev.Date.Day()] = ev
		}
	}

	if calendar.IsFutureMonth(year, m, now) {
		// Verbatim pass-through: the raw status maps directly, with no
		// open-punch relabeling and no synthesis.
		rows := make([]report.DayRecord, 0, len(byDay))
		for day, ev := range byDay {
			rows = append(rows, verbatimRow(ev, dateOf(year, month, day), now))
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Date > rows[j].Date })
		return rows
	}

	lastDay := calendar.DaysInMonth(year, m)
	if calendar.IsCurrentMonth(year, m, now) && now.Day() < lastDay {
		lastDay = now.Day()
	}

	rows := make([]report.DayRecord, 0, lastDay)
	for day := lastDay; day >= 1; day-- {
		date := dateOf(year, month, day)
		ev, hasEvent := byDay[day]

		if hasEvent && ev.HasRealWork() {
			rows = append(rows, classifyEvent(ev, date, now))
			continue
		}

		switch calendar.Weekday(year, m, day) {
		case time.Sunday:
			rows = append(rows, blankRow(date, report.LabelWeekend))
		case time.Saturday:
			if nth := calendar.NthSaturday(day); nth == 1 || nth == 3 {
				rows = append(rows, report.DayRecord{
					Date:          date,
					TimeIn:        halfDayStart,
					TimeOut:       halfDayEnd,
					Label:         report.LabelPresent,
					MinutesWorked: halfDayMinutes,
					Duration:      timeutil.FormatMinutes(halfDayMinutes),
				})
			} else {
				rows = append(rows, blankRow(date, report.LabelWeekend))
			}
		default:
			// Weekday events without real work classify exactly like a
			// missing event.
			rows = append(rows, blankRow(date, report.LabelAbsent))
		}
	}

	return rows
}

// classifyEvent maps one server event to its row. An open punch pair (a
// check-in with no check-out) reads as a running session today and as a
// missing check-out on any past day.
func classifyEvent(ev report.AttendanceEvent, date string, now time.Time) report.DayRecord {
	minutes := (ev.SecondsWorked + 30) / 60

	row := report.DayRecord{
		Date:          date,
		TimeIn:        timeutil.ClockDisplay(ev.FirstCheckIn, now.Location()),
		TimeOut:       timeutil.ClockDisplay(ev.LastCheckOut, now.Location()),
		MinutesWorked: minutes,
		Duration:      timeutil.FormatMinutes(minutes),
	}

	if ev.FirstCheckIn != nil && ev.LastCheckOut == nil {
		if calendar.SameDay(ev.Date, now) {
			row.Label = report.LabelInProgress
		} else {
			row.Label = report.LabelMissingCheckout
		}
		return row
	}

	row.Label = statusLabel(ev.RawStatus)
	return row
}

// verbatimRow maps an event straight from its raw status, with no
// open-punch relabeling. Used for future months only.
func verbatimRow(ev report.AttendanceEvent, date string, now time.Time) report.DayRecord {
	minutes := (ev.SecondsWorked + 30) / 60

	return report.DayRecord{
		Date:          date,
		TimeIn:        timeutil.ClockDisplay(ev.FirstCheckIn, now.Location()),
		TimeOut:       timeutil.ClockDisplay(ev.LastCheckOut, now.Location()),
		Label:         statusLabel(ev.RawStatus),
		MinutesWorked: minutes,
		Duration:      timeutil.FormatMinutes(minutes),
	}
}

func statusLabel(raw string) report.Label {
	switch raw {
	case report.RawStatusPresent:
		return report.LabelPresent
	case report.RawStatusWeekend:
		return report.LabelWeekend
	default:
		return report.LabelAbsent
	}
}

func blankRow(date string, label report.Label) report.DayRecord {
	return report.DayRecord{
		Date:     date,
		TimeIn:   timeutil.NoValue,
		TimeOut:  timeutil.NoValue,
		Label:    label,
		Duration: timeutil.FormatMinutes(0),
	}
}

func summarize(year, month int, rows []report.DayRecord) report.MonthSummary {
	summary := report.MonthSummary{
		Year:  year,
		Month: month,
		Rows:  rows,
	}

	// Only Present rows count toward the worked total; open punch pairs
	// and weekend pass-throughs keep their per-row minutes out of it.
	for _, row := range rows {
		switch row.Label {
		case report.LabelPresent:
			summary.PresentCount++
			summary.TotalMinutes += row.MinutesWorked
		case report.LabelAbsent:
			summary.AbsentCount++
		}
	}
	summary.TotalDuration = timeutil.FormatMinutes(summary.TotalMinutes)

	return summary
}

func dateOf(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
