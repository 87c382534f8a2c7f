// Package timer implements the countdown state machine.
//
// A Timer never runs anything on its own. A periodic driver calls Update,
// which recomputes the time left from clock deltas rather than from the
// number of ticks seen, so a single Update after the process was suspended
// converges straight to the correct phase.
//
// Timer is not safe for concurrent use; callers serialise access.
package timer

import "time"

// Phase is the current mode of a countdown.
type Phase int

const (
	Stopped Phase = iota
	Running
	Paused
	Finished
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "stopped"
	}
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Timer is a single countdown.
type Timer struct {
	clock Clock

	phase            Phase
	total            int
	startedAt        time.Time
	accumulated      time.Duration
	timeLeft         int
	notificationSent bool
}

// New returns a stopped timer reading time from clock.
// A nil clock means SystemClock.
func New(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock
	}
	return &Timer{clock: clock}
}

// ─── Transitions ────────────────────────────────────────────────────────────

// Start re-arms the timer for seconds and sets it running, whatever the
// current phase. Non-positive durations are ignored.
func (t *Timer) Start(seconds int) {
	if seconds <= 0 {
		return
	}
	t.total = seconds
	t.accumulated = 0
	t.notificationSent = false
	t.timeLeft = seconds
	t.startedAt = t.clock.Now()
	t.phase = Running
}

// Pause freezes a running countdown. The time left is reconciled first, so
// pausing a countdown that already ran out finishes it instead.
func (t *Timer) Pause() {
	if t.phase != Running {
		return
	}
	t.Update()
	if t.phase != Running {
		return
	}
	t.accumulated += t.segment()
	t.phase = Paused
}

// Resume continues a paused countdown from where it was frozen.
func (t *Timer) Resume() {
	if t.phase != Paused {
		return
	}
	t.startedAt = t.clock.Now()
	t.phase = Running
}

// Reset stops the countdown and clears all of its state.
func (t *Timer) Reset() {
	t.phase = Stopped
	t.total = 0
	t.accumulated = 0
	t.timeLeft = 0
	t.notificationSent = false
	t.startedAt = time.Time{}
}

// Update recomputes the time left of a running countdown and moves it to
// Finished once nothing is left. It is a no-op in every other phase.
func (t *Timer) Update() {
	if t.phase != Running {
		return
	}
	elapsed := int((t.accumulated + t.segment()) / time.Second)
	t.timeLeft = max(0, t.total-elapsed)
	if t.timeLeft == 0 {
		t.phase = Finished
	}
}

// SetNotificationSent records that the completion alert went out. It only
// takes effect while Finished and is idempotent.
func (t *Timer) SetNotificationSent() {
	if t.phase != Finished {
		return
	}
	t.notificationSent = true
}

// ─── Queries ────────────────────────────────────────────────────────────────

func (t *Timer) Phase() Phase             { return t.phase }
func (t *Timer) IsRunning() bool          { return t.phase == Running }
func (t *Timer) IsPaused() bool           { return t.phase == Paused }
func (t *Timer) IsStopped() bool          { return t.phase == Stopped }
func (t *Timer) IsFinished() bool         { return t.phase == Finished }
func (t *Timer) IsNotificationSent() bool { return t.notificationSent }

// Total returns the duration the timer was last started with, in seconds.
func (t *Timer) Total() int { return t.total }

// TimeLeft returns the seconds left as of the last Update, Pause or Start.
func (t *Timer) TimeLeft() int { return t.timeLeft }

// Elapsed returns the running time consumed so far, excluding pauses.
func (t *Timer) Elapsed() time.Duration {
	switch t.phase {
	case Running:
		return t.accumulated + t.segment()
	case Paused:
		return t.accumulated
	case Finished:
		return time.Duration(t.total) * time.Second
	default:
		return 0
	}
}

// segment is the time spent in the current run segment. A clock that moved
// backwards counts as no time at all.
func (t *Timer) segment() time.Duration {
	return max(0, t.clock.Now().Sub(t.startedAt))
}
