package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hrportal/attendance-widget-go/internal/domain/session"
	"github.com/hrportal/attendance-widget-go/internal/pkg/calendar"
	"github.com/hrportal/attendance-widget-go/internal/pkg/clock"
	"github.com/hrportal/attendance-widget-go/internal/pkg/hrapi"
	"github.com/hrportal/attendance-widget-go/internal/pkg/sse"
	"github.com/hrportal/attendance-widget-go/internal/pkg/timer"
	"github.com/hrportal/attendance-widget-go/internal/pkg/timeutil"
)

const (
	// EventPhase is published on every session phase transition.
	EventPhase = "session_phase"

	noticeResumedRemote = "A session was already in progress on the server; the timer has been resumed."
)

type ControllerImpl struct {
	store      session.Store
	gateway    session.RemoteGateway
	liveTimer  *timer.Timer
	hub        *sse.Hub
	clk        clock.Clock
	loc        *time.Location
	employeeID string

	mu       sync.Mutex
	today    session.TodayRecord
	inFlight bool
}

// NewController wires the session controller for one employee. The live
// timer must already publish its ticks wherever the portal listens; the
// controller only starts and stops it on phase transitions.
func NewController(
	store session.Store,
	gateway session.RemoteGateway,
	liveTimer *timer.Timer,
	hub *sse.Hub,
	clk clock.Clock,
	loc *time.Location,
	employeeID string,
) session.Controller {
	if clk == nil {
		clk = clock.System()
	}
	if loc == nil {
		loc = time.UTC
	}
	c := &ControllerImpl{
		store:      store,
		gateway:    gateway,
		liveTimer:  liveTimer,
		hub:        hub,
		clk:        clk,
		loc:        loc,
		employeeID: employeeID,
	}
	c.today = session.TodayRecord{
		Date:  calendar.MidnightOf(clk.Now().In(loc)),
		Phase: session.PhaseNotStarted,
	}
	return c
}

// CheckIn implements session.Controller.
func (c *ControllerImpl) CheckIn(ctx context.Context) (session.CheckInResult, error) {
	if c.employeeID == "" {
		return session.CheckInResult{}, session.ErrMissingEmployeeID
	}

	c.mu.Lock()
	c.rollDayLocked()
	if c.inFlight {
		c.mu.Unlock()
		return session.CheckInResult{}, session.ErrRequestInFlight
	}
	// Precondition check happens before any network call. Completed is
	// terminal for the day, so it refuses too.
	if c.today.Phase != session.PhaseNotStarted {
		c.mu.Unlock()
		return session.CheckInResult{}, session.ErrAlreadyCheckedIn
	}
	c.inFlight = true
	c.mu.Unlock()

	defer c.clearInFlight()

	res, err := c.gateway.CheckIn(ctx, c.employeeID)
	if err != nil {
		if hrapi.IsAlreadyCheckedIn(err) {
			// Another tab (or an earlier visit) already opened the session.
			// The server does not echo the original start instant on this
			// path, so seed a best-effort "now" and resume instead of
			// surfacing a contradiction to the user.
			start := c.clk.Now().UTC()
			slog.Info("Check-in conflict reconciled into a running session",
				"employee_id", c.employeeID, "seeded_start", start)
			if err := c.enterInProgress(start); err != nil {
				return session.CheckInResult{}, err
			}
			return session.CheckInResult{
				Today:     c.Today(),
				Notice:    noticeResumedRemote,
				Reclaimed: true,
			}, nil
		}
		// Store untouched so a retry stays safe.
		return session.CheckInResult{}, fmt.Errorf("check-in failed: %w", err)
	}

	if err := c.enterInProgress(res.CheckInUTC); err != nil {
		return session.CheckInResult{}, err
	}

	return session.CheckInResult{Today: c.Today()}, nil
}

// CheckOut implements session.Controller.
func (c *ControllerImpl) CheckOut(ctx context.Context) (session.CheckOutResult, error) {
	if c.employeeID == "" {
		return session.CheckOutResult{}, session.ErrMissingEmployeeID
	}

	c.mu.Lock()
	c.rollDayLocked()
	if c.inFlight {
		c.mu.Unlock()
		return session.CheckOutResult{}, session.ErrRequestInFlight
	}
	if c.today.Phase != session.PhaseInProgress || c.today.CheckInUTC == nil {
		c.mu.Unlock()
		return session.CheckOutResult{}, session.ErrNotCheckedIn
	}
	start := *c.today.CheckInUTC
	c.inFlight = true
	c.mu.Unlock()

	defer c.clearInFlight()

	res, err := c.gateway.CheckOut(ctx, c.employeeID, start.Format(time.RFC3339))
	if err != nil {
		// Store untouched; the session keeps running until the server
		// confirms the end instant.
		return session.CheckOutResult{}, fmt.Errorf("check-out failed: %w", err)
	}

	minutes := 0
	if res.TotalMS != nil {
		minutes = int((*res.TotalMS + 30_000) / 60_000)
	} else {
		minutes = int(res.CheckOutUTC.Sub(start).Round(time.Minute) / time.Minute)
	}
	if minutes < 0 {
		minutes = 0
	}

	// The server confirmed the end instant, so the day completes no
	// matter what the local cache does.
	c.liveTimer.Stop()

	end := res.CheckOutUTC

	c.mu.Lock()
	c.today.CheckOutUTC = &end
	c.today.Minutes = minutes
	c.today.Phase = session.PhaseCompleted
	c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		// A stale Running flag is discarded by the next startup
		// reconciliation, since the server reports the session closed.
		slog.Warn("Failed to clear session cache after check-out",
			"employee_id", c.employeeID, "error", err)
	}

	c.publishPhase()

	return session.CheckOutResult{
		Today:    c.Today(),
		Duration: timeutil.FormatMinutes(minutes),
	}, nil
}

// Reconcile implements session.Controller. Server state always wins over
// whatever the store persisted.
func (c *ControllerImpl) Reconcile(ctx context.Context) error {
	if c.employeeID == "" {
		return session.ErrMissingEmployeeID
	}

	c.mu.Lock()
	c.rollDayLocked()
	c.mu.Unlock()

	active, err := c.gateway.ActiveSession(ctx, c.employeeID)
	if err != nil {
		return fmt.Errorf("startup reconciliation failed: %w", err)
	}

	if active != nil && active.CheckInUTC != nil && active.CheckOutUTC == nil {
		// Open session on the server: resume it regardless of local state.
		slog.Info("Reconciliation found an open server session",
			"employee_id", c.employeeID, "check_in", *active.CheckInUTC)
		return c.enterInProgress(active.CheckInUTC.UTC())
	}

	if active != nil && active.CheckOutUTC != nil {
		// The server considers the session closed; a leftover ticking
		// timer must not survive it.
		slog.Info("Reconciliation found a closed server session",
			"employee_id", c.employeeID, "check_out", *active.CheckOutUTC)
		c.liveTimer.Stop()
		if err := c.store.Clear(); err != nil {
			return fmt.Errorf("failed to clear stale session cache: %w", err)
		}

		end := active.CheckOutUTC.UTC()
		minutes := 0
		var startUTC *time.Time
		if active.CheckInUTC != nil {
			s := active.CheckInUTC.UTC()
			startUTC = &s
			minutes = int(end.Sub(s).Round(time.Minute) / time.Minute)
			if minutes < 0 {
				minutes = 0
			}
		}

		c.mu.Lock()
		c.today.CheckInUTC = startUTC
		c.today.CheckOutUTC = &end
		c.today.Minutes = minutes
		c.today.Phase = session.PhaseCompleted
		c.mu.Unlock()

		c.publishPhase()
		return nil
	}

	// No server session today. Honor the persisted flag only when it is
	// coherent; otherwise treat the day as not started.
	st, err := c.store.Get()
	if err != nil {
		return fmt.Errorf("failed to read session cache: %w", err)
	}

	if st.Running {
		start := timeutil.ParseInstant(st.StartISO)
		if start == nil || !calendar.SameDay(c.clk.Now().In(c.loc), *start) {
			slog.Warn("Discarding stale persisted session state",
				"employee_id", c.employeeID, "start_iso", st.StartISO)
			return c.store.Clear()
		}
		return c.enterInProgress(start.UTC())
	}

	return nil
}

// Today implements session.Controller.
func (c *ControllerImpl) Today() session.TodayView {
	c.mu.Lock()
	c.rollDayLocked()
	rec := c.today
	c.mu.Unlock()

	view := session.TodayView{
		Date:    rec.Date.Format("2006-01-02"),
		Phase:   rec.Phase,
		TimeIn:  timeutil.ClockDisplay(rec.CheckInUTC, c.loc),
		TimeOut: timeutil.ClockDisplay(rec.CheckOutUTC, c.loc),
		Minutes: rec.Minutes,
	}

	if rec.Phase == session.PhaseInProgress && rec.CheckInUTC != nil {
		elapsed := c.clk.Now().Sub(*rec.CheckInUTC)
		if elapsed < 0 {
			elapsed = 0
		}
		view.ElapsedSeconds = int64(elapsed.Seconds())
		view.ElapsedDisplay = timeutil.FormatElapsed(elapsed)
	} else {
		view.ElapsedDisplay = timeutil.FormatElapsed(0)
	}

	return view
}

// Phase implements session.Controller.
func (c *ControllerImpl) Phase() session.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollDayLocked()
	return c.today.Phase
}

// EmployeeID implements session.Controller.
func (c *ControllerImpl) EmployeeID() string {
	return c.employeeID
}

// Close implements session.Controller.
func (c *ControllerImpl) Close() {
	c.liveTimer.Stop()
}

// enterInProgress persists the running state, updates today's record and
// starts the live timer.
func (c *ControllerImpl) enterInProgress(start time.Time) error {
	if err := c.store.Set(session.State{
		StartISO: start.Format(time.RFC3339),
		Running:  true,
	}); err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}

	c.mu.Lock()
	c.today.CheckInUTC = &start
	c.today.CheckOutUTC = nil
	c.today.Minutes = 0
	c.today.Phase = session.PhaseInProgress
	c.mu.Unlock()

	c.liveTimer.Start(start)
	c.publishPhase()
	return nil
}

func (c *ControllerImpl) clearInFlight() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

// rollDayLocked resets the record when the local calendar day has moved
// on. Completed is terminal only within its own day.
func (c *ControllerImpl) rollDayLocked() {
	today := calendar.MidnightOf(c.clk.Now().In(c.loc))
	if c.today.Date.Equal(today) {
		return
	}
	c.today = session.TodayRecord{
		Date:  today,
		Phase: session.PhaseNotStarted,
	}
}

func (c *ControllerImpl) publishPhase() {
	if c.hub == nil {
		return
	}
	c.hub.Publish(c.employeeID, sse.Event{
		EmployeeID: c.employeeID,
		Name:       EventPhase,
		Data:       c.Today(),
	})
}
