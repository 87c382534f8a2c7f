// Package scheduler provides the periodic drivers that tick the countdown.
//
// Core concepts:
//   - Scheduler: schedule(interval, callback) -> Handle, cancel(Handle)
//   - Ticker: wall-clock implementation, one goroutine per handle
//   - Manual: simulated clock for tests, advanced explicitly
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// DefaultInterval is the display refresh cadence.
const DefaultInterval = time.Second

// Handle identifies a scheduled callback. The zero Handle is never issued.
type Handle uint64

// Scheduler calls a function at a fixed interval until cancelled.
type Scheduler interface {
	// Schedule starts calling fn every interval. Calls for one handle never overlap.
	Schedule(interval time.Duration, fn func()) Handle

	// Cancel stops calling the function behind h. Unknown handles are ignored.
	Cancel(h Handle)
}

// ─── Ticker ─────────────────────────────────────────────────────────────────

// Ticker schedules callbacks on the wall clock. A tick missed while the
// callback ran, or while the process was suspended, is coalesced into one.
type Ticker struct {
	mu     sync.Mutex
	jobs   map[Handle]context.CancelFunc
	closed bool
	next   atomic.Uint64
	wg     sync.WaitGroup
}

// NewTicker creates a wall-clock scheduler.
func NewTicker() *Ticker {
	return &Ticker{jobs: make(map[Handle]context.CancelFunc)}
}

// Schedule implements Scheduler. Non-positive intervals fall back to
// DefaultInterval. After Close it returns the zero Handle and does nothing.
func (t *Ticker) Schedule(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		interval = DefaultInterval
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := Handle(t.next.Inc())
	t.jobs[h] = cancel

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		tk := time.NewTicker(interval)
		defer tk.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				// Cancel may race with a pending tick; prefer the cancellation.
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()
	return h
}

// Cancel implements Scheduler. It does not wait for a callback in flight.
func (t *Ticker) Cancel(h Handle) {
	t.mu.Lock()
	cancel, ok := t.jobs[h]
	delete(t.jobs, h)
	t.mu.Unlock()

	if ok {
		cancel()
	}
}

// Close cancels every handle and waits for the goroutines to exit.
// It must not be called from inside a scheduled callback.
func (t *Ticker) Close() {
	t.mu.Lock()
	t.closed = true
	for h, cancel := range t.jobs {
		cancel()
		delete(t.jobs, h)
	}
	t.mu.Unlock()

	t.wg.Wait()
}

// Active returns the number of live handles.
func (t *Ticker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}
