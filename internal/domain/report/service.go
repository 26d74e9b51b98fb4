package report

import "context"

// ReportService derives the classified month views consumed by the portal.
type ReportService interface {
	// Summary fetches the month's raw events and derives the classified
	// rows plus aggregates.
	Summary(ctx context.Context, req MonthQuery) (MonthSummary, error)

	// Calendar lays the classified month out on a week-aligned grid.
	Calendar(ctx context.Context, req MonthQuery) (CalendarView, error)
}
