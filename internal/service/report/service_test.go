package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrportal/attendance-widget-go/internal/domain/report"
	"github.com/hrportal/attendance-widget-go/internal/domain/session"
	"github.com/hrportal/attendance-widget-go/internal/pkg/clock"
	"github.com/hrportal/attendance-widget-go/internal/pkg/validator"
)

type fakeEventSource struct {
	events []report.AttendanceEvent
	err    error
	calls  int
}

func (f *fakeEventSource) MonthEvents(ctx context.Context, employeeID string, year, month int) ([]report.AttendanceEvent, error) {
	f.calls++
	return f.events, f.err
}

type fakeSessionGateway struct {
	active *session.RemoteActiveSession
	err    error
}

func (f *fakeSessionGateway) CheckIn(ctx context.Context, employeeID string) (session.RemoteCheckIn, error) {
	return session.RemoteCheckIn{}, errors.New("not used")
}

func (f *fakeSessionGateway) CheckOut(ctx context.Context, employeeID, startISO string) (session.RemoteCheckOut, error) {
	return session.RemoteCheckOut{}, errors.New("not used")
}

func (f *fakeSessionGateway) ActiveSession(ctx context.Context, employeeID string) (*session.RemoteActiveSession, error) {
	return f.active, f.err
}

// reportNow is Monday 2024-01-15 09:00 UTC. January 2024 starts on a
// Monday, so its Saturdays are the 6th, 13th, 20th and 27th.
var reportNow = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

func punchAt(day, hour, minute int) *time.Time {
	t := time.Date(2024, time.January, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func presentEvent(day, seconds int) report.AttendanceEvent {
	return report.AttendanceEvent{
		Date:          time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC),
		FirstCheckIn:  punchAt(day, 9, 0),
		LastCheckOut:  punchAt(day, 17, 0),
		SecondsWorked: seconds,
		RawStatus:     report.RawStatusPresent,
	}
}

func rowByDate(t *testing.T, rows []report.DayRecord, date string) report.DayRecord {
	t.Helper()
	for _, row := range rows {
		if row.Date == date {
			return row
		}
	}
	t.Fatalf("no row for %s", date)
	return report.DayRecord{}
}

func TestClassifyMonth_CurrentMonth(t *testing.T) {
	events := []report.AttendanceEvent{
		presentEvent(8, 28800),
		{
			// Past day with a check-in but no check-out.
			Date:         time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
			FirstCheckIn: punchAt(10, 9, 0),
			RawStatus:    report.RawStatusPresent,
		},
		{
			// Today, still running.
			Date:         time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
			FirstCheckIn: punchAt(15, 8, 30),
			RawStatus:    report.RawStatusPresent,
		},
	}

	rows := ClassifyMonth(events, 2024, 1, reportNow)

	// Capped to today, newest first.
	require.Len(t, rows, 15)
	assert.Equal(t, "2024-01-15", rows[0].Date)
	assert.Equal(t, "2024-01-01", rows[14].Date)

	assert.Equal(t, report.LabelInProgress, rowByDate(t, rows, "2024-01-15").Label)
	assert.Equal(t, report.LabelMissingCheckout, rowByDate(t, rows, "2024-01-10").Label)

	worked := rowByDate(t, rows, "2024-01-08")
	assert.Equal(t, report.LabelPresent, worked.Label)
	assert.Equal(t, 480, worked.MinutesWorked)
	assert.Equal(t, "09:00", worked.TimeIn)
	assert.Equal(t, "17:00", worked.TimeOut)

	// First Saturday synthesizes a half-day.
	halfDay := rowByDate(t, rows, "2024-01-06")
	assert.Equal(t, report.DayRecord{
		Date:          "2024-01-06",
		TimeIn:        "10:00",
		TimeOut:       "14:00",
		Label:         report.LabelPresent,
		MinutesWorked: 240,
		Duration:      "4h 00m",
	}, halfDay)

	// Second Saturday and both Sundays stay weekend.
	assert.Equal(t, report.LabelWeekend, rowByDate(t, rows, "2024-01-13").Label)
	assert.Equal(t, report.LabelWeekend, rowByDate(t, rows, "2024-01-07").Label)
	assert.Equal(t, report.LabelWeekend, rowByDate(t, rows, "2024-01-14").Label)

	// Uncovered weekdays gap-fill to absent.
	absent := rowByDate(t, rows, "2024-01-09")
	assert.Equal(t, report.LabelAbsent, absent.Label)
	assert.Equal(t, "—", absent.TimeIn)
	assert.Equal(t, "—", absent.TimeOut)
}

func TestClassifyMonth_RealWorkOverridesWeekendPolicy(t *testing.T) {
	events := []report.AttendanceEvent{
		presentEvent(7, 14400),  // Sunday with recorded work
		presentEvent(13, 10800), // plain Saturday with recorded work
	}

	rows := ClassifyMonth(events, 2024, 1, reportNow)

	assert.Equal(t, report.LabelPresent, rowByDate(t, rows, "2024-01-07").Label)
	assert.Equal(t, report.LabelPresent, rowByDate(t, rows, "2024-01-13").Label)
	assert.Equal(t, 240, rowByDate(t, rows, "2024-01-07").MinutesWorked)
}

func TestClassifyMonth_ZeroWorkWeekdayEventIsAbsent(t *testing.T) {
	events := []report.AttendanceEvent{
		{
			// The server says PRESENT but recorded no punches and no
			// seconds; an empty weekday event classifies like no event.
			Date:      time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC),
			RawStatus: report.RawStatusPresent,
		},
		{
			Date:      time.Date(2024, time.January, 11, 0, 0, 0, 0, time.UTC),
			RawStatus: report.RawStatusWeekend,
		},
	}

	rows := ClassifyMonth(events, 2024, 1, reportNow)

	for _, date := range []string{"2024-01-09", "2024-01-11"} {
		row := rowByDate(t, rows, date)
		assert.Equal(t, report.LabelAbsent, row.Label)
		assert.Equal(t, "—", row.TimeIn)
		assert.Zero(t, row.MinutesWorked)
	}
}

func TestClassifyMonth_PastMonthCoversEveryDay(t *testing.T) {
	rows := ClassifyMonth(nil, 2023, 11, reportNow)

	require.Len(t, rows, 30)

	// Every day classifies to exactly one label and the three base labels
	// partition the month when the data holds no open punches.
	counts := map[report.Label]int{}
	for _, row := range rows {
		counts[row.Label]++
	}
	assert.Equal(t, 30, counts[report.LabelPresent]+counts[report.LabelAbsent]+counts[report.LabelWeekend])

	// November 2023: Saturdays on the 4th, 11th, 18th, 25th.
	assert.Equal(t, report.LabelPresent, rowByDate(t, rows, "2023-11-04").Label)
	assert.Equal(t, report.LabelWeekend, rowByDate(t, rows, "2023-11-11").Label)
	assert.Equal(t, report.LabelPresent, rowByDate(t, rows, "2023-11-18").Label)
	assert.Equal(t, report.LabelWeekend, rowByDate(t, rows, "2023-11-25").Label)
}

func TestClassifyMonth_FutureMonthPassesThroughVerbatim(t *testing.T) {
	events := []report.AttendanceEvent{
		{
			Date:      time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
			RawStatus: report.RawStatusWeekend,
		},
	}

	rows := ClassifyMonth(events, 2024, 3, reportNow)

	// No gap-fill and no Saturday synthesis for a future month.
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-05", rows[0].Date)
	assert.Equal(t, report.LabelWeekend, rows[0].Label)
}

func TestClassifyMonth_FutureMonthKeepsRawStatusOnOpenPunch(t *testing.T) {
	checkIn := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	events := []report.AttendanceEvent{
		{
			Date:          time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
			FirstCheckIn:  &checkIn,
			SecondsWorked: 3600,
			RawStatus:     report.RawStatusPresent,
		},
	}

	rows := ClassifyMonth(events, 2024, 3, reportNow)

	// An open punch pair in a future month is not relabeled; the raw
	// status passes through untouched.
	require.Len(t, rows, 1)
	assert.Equal(t, report.LabelPresent, rows[0].Label)
	assert.Equal(t, "09:00", rows[0].TimeIn)
}

func TestClassifyMonth_Deterministic(t *testing.T) {
	events := []report.AttendanceEvent{
		presentEvent(8, 28800),
		presentEvent(12, 30600),
	}

	first := ClassifyMonth(events, 2024, 1, reportNow)
	second := ClassifyMonth(events, 2024, 1, reportNow)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("classification is not deterministic (-first +second):\n%s", diff)
	}
}

func TestClassifyMonth_IgnoresEventsOutsideMonth(t *testing.T) {
	events := []report.AttendanceEvent{
		presentEvent(8, 28800),
		{
			Date:          time.Date(2023, time.December, 29, 0, 0, 0, 0, time.UTC),
			SecondsWorked: 3600,
			RawStatus:     report.RawStatusPresent,
		},
	}

	rows := ClassifyMonth(events, 2024, 1, reportNow)

	for _, row := range rows {
		assert.Equal(t, "2024-01", row.Date[:7])
	}
}

func TestSummary_Aggregates(t *testing.T) {
	source := &fakeEventSource{events: []report.AttendanceEvent{
		presentEvent(8, 28800),
		{
			// A broken punch pair with recorded seconds must not count
			// toward the worked total.
			Date:          time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
			FirstCheckIn:  punchAt(10, 9, 0),
			SecondsWorked: 3600,
			RawStatus:     report.RawStatusPresent,
		},
	}}
	svc := NewReportService(source, &fakeSessionGateway{}, clock.Fixed(reportNow), time.UTC, "EMP-001")

	summary, err := svc.Summary(context.Background(), report.MonthQuery{Year: 2024, Month: 1})
	require.NoError(t, err)

	assert.Equal(t, 2024, summary.Year)
	assert.Equal(t, 1, summary.Month)
	require.Len(t, summary.Rows, 15)

	// Present: Jan 8 plus the 1st-Saturday half-day on Jan 6. Jan 10 is
	// missing_checkout and counts in neither bucket.
	assert.Equal(t, 2, summary.PresentCount)
	// Absent: the nine remaining uncovered weekdays, today included.
	assert.Equal(t, 9, summary.AbsentCount)
	// 480 worked on Jan 8 plus the 240-minute half-day; the 60 minutes on
	// the missing-checkout row stay out.
	assert.Equal(t, 720, summary.TotalMinutes)
	assert.Equal(t, "12h 00m", summary.TotalDuration)
}

func TestSummary_InvalidQuery(t *testing.T) {
	tests := []struct {
		name  string
		query report.MonthQuery
	}{
		{"month too low", report.MonthQuery{Year: 2024, Month: 0}},
		{"month too high", report.MonthQuery{Year: 2024, Month: 13}},
		{"year before range", report.MonthQuery{Year: 1999, Month: 6}},
	}

	source := &fakeEventSource{}
	svc := NewReportService(source, &fakeSessionGateway{}, clock.Fixed(reportNow), time.UTC, "EMP-001")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Summary(context.Background(), tt.query)

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Zero(t, source.calls)
		})
	}
}

func TestSummary_FetchFailure(t *testing.T) {
	source := &fakeEventSource{err: errors.New("connection refused")}
	svc := NewReportService(source, &fakeSessionGateway{}, clock.Fixed(reportNow), time.UTC, "EMP-001")

	_, err := svc.Summary(context.Background(), report.MonthQuery{Year: 2024, Month: 1})
	assert.ErrorIs(t, err, report.ErrReportFetch)
}

func TestSummary_MissingEmployeeID(t *testing.T) {
	svc := NewReportService(&fakeEventSource{}, &fakeSessionGateway{}, clock.Fixed(reportNow), time.UTC, "")

	_, err := svc.Summary(context.Background(), report.MonthQuery{Year: 2024, Month: 1})
	assert.ErrorIs(t, err, session.ErrMissingEmployeeID)
}

func TestCalendar_MarksRunningSession(t *testing.T) {
	start := reportNow.Add(-time.Hour)
	source := &fakeEventSource{}
	gw := &fakeSessionGateway{
		active: &session.RemoteActiveSession{CheckInUTC: &start},
	}
	svc := NewReportService(source, gw, clock.Fixed(reportNow), time.UTC, "EMP-001")

	view, err := svc.Calendar(context.Background(), report.MonthQuery{Year: 2024, Month: 1})
	require.NoError(t, err)

	var todayCell *report.CalendarCell
	for wi := range view.Weeks {
		for ci := range view.Weeks[wi].Cells {
			if view.Weeks[wi].Cells[ci].IsToday {
				todayCell = &view.Weeks[wi].Cells[ci]
			}
		}
	}
	require.NotNil(t, todayCell)
	assert.Equal(t, "2024-01-15", todayCell.Date)
	assert.True(t, todayCell.HasRunningSession)
}

func TestCalendar_SessionLookupFailureDegradesGracefully(t *testing.T) {
	source := &fakeEventSource{}
	gw := &fakeSessionGateway{err: errors.New("timeout")}
	svc := NewReportService(source, gw, clock.Fixed(reportNow), time.UTC, "EMP-001")

	view, err := svc.Calendar(context.Background(), report.MonthQuery{Year: 2024, Month: 1})
	require.NoError(t, err)

	for _, week := range view.Weeks {
		for _, cell := range week.Cells {
			assert.False(t, cell.HasRunningSession)
		}
	}
}
