// Package timer drives the visible running-session clock. A Timer is
// started when the session enters InProgress (including resumption after
// a restart) and cancelled unconditionally on any exit from that state.
// It only ever reads the start instant it was given; it never touches the
// session store.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/hrportal/attendance-widget-go/internal/pkg/clock"
	"github.com/hrportal/attendance-widget-go/internal/pkg/timeutil"
)

// Tick is one recomputation of the elapsed session time.
type Tick struct {
	Start   time.Time     `json:"start"`
	Elapsed time.Duration `json:"-"`
	Seconds int64         `json:"elapsed_seconds"`
	Display string        `json:"elapsed_display"`
}

// Timer republishes elapsed time at a fixed interval while running.
type Timer struct {
	interval time.Duration
	clk      clock.Clock
	publish  func(Tick)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a stopped Timer. publish is invoked from the timer goroutine
// once immediately on start and then every interval.
func New(interval time.Duration, clk clock.Clock, publish func(Tick)) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Timer{
		interval: interval,
		clk:      clk,
		publish:  publish,
	}
}

// Start begins ticking against the given start instant. A previous run is
// cancelled first, so two calls cannot leak a goroutine.
func (t *Timer) Start(start time.Time) {
	t.Stop()

	ctx, cancel := context.WithCancel(context.Background())

	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		t.emit(start)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.emit(start)
			}
		}
	}()
}

// Stop cancels the ticking goroutine and waits for it to exit. Safe to
// call on a stopped timer.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.wg.Wait()
}

// Running reports whether the timer is currently ticking.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Timer) emit(start time.Time) {
	if t.publish == nil {
		return
	}

	elapsed := t.clk.Now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}

	t.publish(Tick{
		Start:   start,
		Elapsed: elapsed,
		Seconds: int64(elapsed.Seconds()),
		Display: timeutil.FormatElapsed(elapsed),
	})
}
