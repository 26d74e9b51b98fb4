// Package hrapi is the HTTP client for the attendance server of record.
// It owns the wire shapes of the remote API and normalizes them into the
// session and report domain types at the boundary.
package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hrportal/attendance-widget-go/internal/domain/report"
	"github.com/hrportal/attendance-widget-go/internal/domain/session"
	"github.com/hrportal/attendance-widget-go/internal/pkg/timeutil"
)

// Client talks to the remote attendance API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	loc        *time.Location
}

// NewClient creates a remote attendance API client. loc is the local
// calendar zone used when normalizing month-report work dates.
func NewClient(baseURL string, timeout time.Duration, loc *time.Location) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		loc:        loc,
	}
}

// APIError represents a non-2xx answer from the remote attendance API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("attendance API error [%d]: %s", e.StatusCode, e.Body)
}

// alreadyInProgressPatterns are the body fragments the remote API is known
// to use for a duplicate check-in. The API does not return a structured
// reason code, so this string heuristic is the single place to fix when
// its wording changes.
var alreadyInProgressPatterns = []string{
	"already checked in",
	"active session",
	"duplicate check-in",
}

// IsAlreadyCheckedIn reports whether err is the remote API's recoverable
// "a session is already open" conflict.
func IsAlreadyCheckedIn(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode != http.StatusBadRequest && apiErr.StatusCode != http.StatusConflict {
		return false
	}
	body := strings.ToLower(apiErr.Body)
	for _, p := range alreadyInProgressPatterns {
		if strings.Contains(body, p) {
			return true
		}
	}
	return false
}

type checkInResponse struct {
	CheckInUTC    string `json:"checkInUtc"`
	WorkDateLocal string `json:"workDateLocal"`
}

type checkOutRequest struct {
	StartedAtUTC string `json:"startedAtUtc,omitempty"`
}

type checkOutResponse struct {
	CheckOutUTC string `json:"checkOutUtc"`
	TotalMS     *int64 `json:"totalMs,omitempty"`
}

type activeSessionResponse struct {
	CheckInUTC  *string `json:"checkInUtc"`
	CheckOutUTC *string `json:"checkOutUtc"`
}

type monthReportItem struct {
	WorkDate      string  `json:"work_date"`
	FirstCheckIn  *string `json:"first_check_in"`
	LastCheckOut  *string `json:"last_check_out"`
	SecondsWorked int     `json:"seconds_worked"`
	Status        string  `json:"status"`
}

// CheckIn implements session.RemoteGateway.
func (c *Client) CheckIn(ctx context.Context, employeeID string) (session.RemoteCheckIn, error) {
	endpoint := fmt.Sprintf("%s/api/attendance/check-in?employeeId=%s", c.baseURL, url.QueryEscape(employeeID))

	var res checkInResponse
	if err := c.do(ctx, http.MethodPost, endpoint, nil, &res); err != nil {
		return session.RemoteCheckIn{}, err
	}

	start := timeutil.ParseInstant(res.CheckInUTC)
	if start == nil {
		return session.RemoteCheckIn{}, fmt.Errorf("check-in succeeded but checkInUtc %q is unparseable", res.CheckInUTC)
	}

	return session.RemoteCheckIn{
		CheckInUTC:    start.UTC(),
		WorkDateLocal: res.WorkDateLocal,
	}, nil
}

// CheckOut implements session.RemoteGateway. The known start instant is
// forwarded so server and client agree on elapsed time even when the
// server does not echo it back.
func (c *Client) CheckOut(ctx context.Context, employeeID string, startISO string) (session.RemoteCheckOut, error) {
	endpoint := fmt.Sprintf("%s/api/attendance/check-out?employeeId=%s", c.baseURL, url.QueryEscape(employeeID))

	var res checkOutResponse
	if err := c.do(ctx, http.MethodPost, endpoint, checkOutRequest{StartedAtUTC: startISO}, &res); err != nil {
		return session.RemoteCheckOut{}, err
	}

	end := timeutil.ParseInstant(res.CheckOutUTC)
	if end == nil {
		return session.RemoteCheckOut{}, fmt.Errorf("check-out succeeded but checkOutUtc %q is unparseable", res.CheckOutUTC)
	}

	return session.RemoteCheckOut{
		CheckOutUTC: end.UTC(),
		TotalMS:     res.TotalMS,
	}, nil
}

// ActiveSession implements session.RemoteGateway. A 404 or an empty body
// means no open session.
func (c *Client) ActiveSession(ctx context.Context, employeeID string) (*session.RemoteActiveSession, error) {
	endpoint := fmt.Sprintf("%s/api/attendance/%s/active-session", c.baseURL, url.PathEscape(employeeID))

	var res activeSessionResponse
	err := c.do(ctx, http.MethodGet, endpoint, nil, &res)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	if res.CheckInUTC == nil {
		return nil, nil
	}

	return &session.RemoteActiveSession{
		CheckInUTC:  timeutil.ParseInstant(*res.CheckInUTC),
		CheckOutUTC: optionalInstant(res.CheckOutUTC),
	}, nil
}

// MonthEvents implements report.EventSource. Items with an unparseable
// work date are dropped with a warning; bad punch timestamps degrade to
// nil fields so a single dirty row cannot fail the month.
func (c *Client) MonthEvents(ctx context.Context, employeeID string, year, month int) ([]report.AttendanceEvent, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	q.Set("include_absent", "true")
	q.Set("working_days_only", "false")
	q.Set("cap_to_today", "true")

	endpoint := fmt.Sprintf("%s/api/attendance/%s/month-report?%s", c.baseURL, url.PathEscape(employeeID), q.Encode())

	var items []monthReportItem
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, err
	}

	events := make([]report.AttendanceEvent, 0, len(items))
	for _, item := range items {
		date, err := time.ParseInLocation("2006-01-02", item.WorkDate, c.loc)
		if err != nil {
			slog.Warn("Dropping month-report item with unparseable work date",
				"employee_id", employeeID, "work_date", item.WorkDate)
			continue
		}

		seconds := item.SecondsWorked
		if seconds < 0 {
			seconds = 0
		}

		events = append(events, report.AttendanceEvent{
			Date:          date,
			FirstCheckIn:  optionalInstant(item.FirstCheckIn),
			LastCheckOut:  optionalInstant(item.LastCheckOut),
			SecondsWorked: seconds,
			RawStatus:     strings.ToUpper(strings.TrimSpace(item.Status)),
		})
	}

	return events, nil
}

func optionalInstant(s *string) *time.Time {
	if s == nil {
		return nil
	}
	return timeutil.ParseInstant(*s)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("attendance API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read attendance API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode attendance API response: %w", err)
	}

	return nil
}
