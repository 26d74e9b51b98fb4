package report

import (
	"time"

	"github.com/hrportal/attendance-widget-go/internal/domain/report"
	"github.com/hrportal/attendance-widget-go/internal/pkg/calendar"
)

// BuildGrid lays a classified month out on Sunday-aligned weeks. Cells
// before the 1st and after the last day are blank filler so every week
// row holds exactly seven cells. Days of the requested month that have no
// classified row yet (the remainder of the current month, or a future
// month's unreported days) render as in-month cells with a nil record.
func BuildGrid(summary report.MonthSummary, now time.Time, running bool) report.CalendarView {
	month := time.Month(summary.Month)
	daysInMonth := calendar.DaysInMonth(summary.Year, month)
	leading := int(calendar.Weekday(summary.Year, month, 1))

	byDate := make(map[string]*report.DayRecord, len(summary.Rows))
	for i := range summary.Rows {
		byDate[summary.Rows[i].Date] = &summary.Rows[i]
	}

	today := ""
	if calendar.IsCurrentMonth(summary.Year, month, now) {
		today = now.Format("2006-01-02")
	}

	totalCells := leading + daysInMonth
	if rem := totalCells % 7; rem != 0 {
		totalCells += 7 - rem
	}

	view := report.CalendarView{
		Year:    summary.Year,
		Month:   summary.Month,
		Weeks:   make([]report.CalendarWeek, 0, totalCells/7),
		Summary: summary,
	}

	var week report.CalendarWeek
	for i := 0; i < totalCells; i++ {
		day := i - leading + 1

		var cell report.CalendarCell
		if day >= 1 && day <= daysInMonth {
			date := time.Date(summary.Year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
			cell = report.CalendarCell{
				Date:    date,
				Day:     day,
				InMonth: true,
				Record:  byDate[date],
				IsToday: date == today,
			}
			if rec := cell.Record; rec != nil {
				cell.IsMissingCheckout = rec.Label == report.LabelMissingCheckout
				cell.HasRunningSession = rec.Label == report.LabelInProgress
			}
			if cell.IsToday && running {
				cell.HasRunningSession = true
			}
		}

		week.Cells[i%7] = cell
		if i%7 == 6 {
			view.Weeks = append(view.Weeks, week)
			week = report.CalendarWeek{}
		}
	}

	return view
}
