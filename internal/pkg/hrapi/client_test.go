package hrapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CheckIn_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/attendance/check-in", r.URL.Path)
		assert.Equal(t, "emp-1", r.URL.Query().Get("employeeId"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"checkInUtc":"2024-06-10T02:15:00Z","workDateLocal":"2024-06-10"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, time.UTC)

	res, err := client.CheckIn(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 2, 15, 0, 0, time.UTC), res.CheckInUTC)
	assert.Equal(t, "2024-06-10", res.WorkDateLocal)
}

func TestClient_CheckIn_ConflictDetection(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"already checked in wording", http.StatusBadRequest, `{"error":"Employee has ALREADY Checked In today"}`, true},
		{"active session wording", http.StatusBadRequest, `an active session exists for this employee`, true},
		{"duplicate wording", http.StatusConflict, `duplicate check-in rejected`, true},
		{"unrelated 400", http.StatusBadRequest, `employee not found`, false},
		{"server failure", http.StatusInternalServerError, `already checked in`, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, 5*time.Second, time.UTC)

			_, err := client.CheckIn(context.Background(), "emp-1")
			require.Error(t, err)
			assert.Equal(t, c.want, IsAlreadyCheckedIn(err))
		})
	}
}

func TestIsAlreadyCheckedIn_NonAPIError(t *testing.T) {
	assert.False(t, IsAlreadyCheckedIn(context.DeadlineExceeded))
	assert.False(t, IsAlreadyCheckedIn(nil))
}

func TestClient_CheckOut_ForwardsStartInstant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/attendance/check-out", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2024-06-10T02:15:00Z", body["startedAtUtc"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"checkOutUtc":"2024-06-10T10:45:00Z","totalMs":30600000}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, time.UTC)

	res, err := client.CheckOut(context.Background(), "emp-1", "2024-06-10T02:15:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 10, 45, 0, 0, time.UTC), res.CheckOutUTC)
	require.NotNil(t, res.TotalMS)
	assert.Equal(t, int64(30600000), *res.TotalMS)
}

func TestClient_CheckOut_TotalMsOptional(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"checkOutUtc":"2024-06-10T10:45:00Z"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, time.UTC)

	res, err := client.CheckOut(context.Background(), "emp-1", "")
	require.NoError(t, err)
	assert.Nil(t, res.TotalMS)
}

func TestClient_ActiveSession(t *testing.T) {
	t.Run("open session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/attendance/emp-1/active-session", r.URL.Path)
			_, _ = w.Write([]byte(`{"checkInUtc":"2024-06-10T02:15:00Z","checkOutUtc":null}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second, time.UTC)

		active, err := client.ActiveSession(context.Background(), "emp-1")
		require.NoError(t, err)
		require.NotNil(t, active)
		require.NotNil(t, active.CheckInUTC)
		assert.Nil(t, active.CheckOutUTC)
	})

	t.Run("no session via 404", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second, time.UTC)

		active, err := client.ActiveSession(context.Background(), "emp-1")
		require.NoError(t, err)
		assert.Nil(t, active)
	})

	t.Run("no session via empty object", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second, time.UTC)

		active, err := client.ActiveSession(context.Background(), "emp-1")
		require.NoError(t, err)
		assert.Nil(t, active)
	})
}

func TestClient_MonthEvents_NormalizesDirtyRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/attendance/emp-1/month-report", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2024", q.Get("year"))
		assert.Equal(t, "1", q.Get("month"))
		assert.Equal(t, "true", q.Get("include_absent"))
		assert.Equal(t, "false", q.Get("working_days_only"))
		assert.Equal(t, "true", q.Get("cap_to_today"))

		_, _ = w.Write([]byte(`[
			{"work_date":"2024-01-02","first_check_in":"2024-01-02T02:00:00Z","last_check_out":"2024-01-02T10:30:00Z","seconds_worked":30600,"status":"present"},
			{"work_date":"2024-01-03","first_check_in":"not-a-timestamp","last_check_out":null,"seconds_worked":-5,"status":"ABSENT"},
			{"work_date":"garbage","first_check_in":null,"last_check_out":null,"seconds_worked":0,"status":"ABSENT"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, time.UTC)

	events, err := client.MonthEvents(context.Background(), "emp-1", 2024, 1)
	require.NoError(t, err)
	// The row with the unparseable work date is dropped entirely.
	require.Len(t, events, 2)

	assert.Equal(t, "PRESENT", events[0].RawStatus)
	assert.Equal(t, 30600, events[0].SecondsWorked)
	require.NotNil(t, events[0].FirstCheckIn)

	// Bad punch timestamp degrades to nil, negative seconds clamp to zero.
	assert.Nil(t, events[1].FirstCheckIn)
	assert.Equal(t, 0, events[1].SecondsWorked)
	assert.Equal(t, "ABSENT", events[1].RawStatus)
}

func TestClient_MonthEvents_RemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, time.UTC)

	_, err := client.MonthEvents(context.Background(), "emp-1", 2024, 1)
	require.Error(t, err)
}
