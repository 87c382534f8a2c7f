package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutu-network/countdown/internal/infra/scheduler"
)

var epoch = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func newTestTimer(t *testing.T) (*Timer, *scheduler.Manual) {
	t.Helper()
	clock := scheduler.NewManual(epoch)
	return New(clock), clock
}

// ─── Transitions ────────────────────────────────────────────────────────────

func TestNew_Stopped(t *testing.T) {
	tm, _ := newTestTimer(t)

	assert.True(t, tm.IsStopped())
	assert.Equal(t, Stopped, tm.Phase())
	assert.Equal(t, 0, tm.TimeLeft())
	assert.Equal(t, 0, tm.Total())
	assert.False(t, tm.IsNotificationSent())
}

func TestNew_NilClockUsesSystemClock(t *testing.T) {
	tm := New(nil)
	tm.Start(60)
	tm.Update()
	assert.True(t, tm.IsRunning())
	assert.InDelta(t, 60, tm.TimeLeft(), 1)
}

func TestStart(t *testing.T) {
	tm, _ := newTestTimer(t)
	tm.Start(10)

	assert.True(t, tm.IsRunning())
	assert.Equal(t, 10, tm.Total())
	assert.Equal(t, 10, tm.TimeLeft())
	assert.Equal(t, time.Duration(0), tm.Elapsed())
}

func TestStart_NonPositiveIsNoop(t *testing.T) {
	tests := []struct {
		name  string
		setup func(tm *Timer, clock *scheduler.Manual)
		want  Phase
	}{
		{"stopped", func(tm *Timer, _ *scheduler.Manual) {}, Stopped},
		{"running", func(tm *Timer, _ *scheduler.Manual) { tm.Start(30) }, Running},
		{"paused", func(tm *Timer, _ *scheduler.Manual) { tm.Start(30); tm.Pause() }, Paused},
		{"finished", func(tm *Timer, clock *scheduler.Manual) {
			tm.Start(1)
			clock.Advance(2 * time.Second)
			tm.Update()
		}, Finished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, clock := newTestTimer(t)
			tt.setup(tm, clock)
			total, left := tm.Total(), tm.TimeLeft()

			tm.Start(0)
			tm.Start(-5)

			assert.Equal(t, tt.want, tm.Phase())
			assert.Equal(t, total, tm.Total())
			assert.Equal(t, left, tm.TimeLeft())
		})
	}
}

func TestStart_RearmsFromAnyPhase(t *testing.T) {
	tm, clock := newTestTimer(t)
	tm.Start(2)
	clock.Advance(3 * time.Second)
	tm.Update()
	tm.SetNotificationSent()
	require.True(t, tm.IsFinished())
	require.True(t, tm.IsNotificationSent())

	tm.Start(20)

	assert.True(t, tm.IsRunning())
	assert.False(t, tm.IsNotificationSent())
	assert.Equal(t, 20, tm.TimeLeft())
	assert.Equal(t, time.Duration(0), tm.Elapsed())
}

func TestUpdate_CountsDown(t *testing.T) {
	tm, clock := newTestTimer(t)
	tm.Start(10)

	clock.Advance(3 * time.Second)
	tm.Update()
	assert.Equal(t, 7, tm.TimeLeft())

	clock.Advance(500 * time.Millisecond)
	tm.Update()
	assert.Equal(t, 7, tm.TimeLeft(), "partial seconds do not count")
}

func TestUpdate_NoopOutsideRunning(t *testing.T) {
	tm, clock := newTestTimer(t)
	tm.Update()
	assert.True(t, tm.IsStopped())

	tm.Start(10)
	clock.Advance(2 * time.Second)
	tm.Pause()
	clock.Advance(time.Minute)
	tm.Update()
	assert.True(t, tm.IsPaused())
	assert.Equal(t, 8, tm.TimeLeft())
}

func TestPause_FreezesTimeLeft(t *testing.T) {
	tm, clock := newTestTimer(t)
	tm.Start(10)
	clock.Advance(4 * time.Second)

	tm.Pause()

	assert.True(t, tm.IsPaused())
	assert.Equal(t, 6, tm.TimeLeft())
	assert.Equal(t, 4*time.Second, tm.Elapsed())
}

func TestPause_AfterExpiryFinishes(t *testing.T) {
	tm, clock := newTestTimer(t)
	tm.Start(3)
	clock.Advance(10 * time.Second)

	tm.Pause()

	assert.True(t, tm.IsFinished())
	assert.Equal(t, 0, tm.TimeLeft())
}

func TestPauseResume_NoopsInWrongPhase(t *testing.T) {
	tm, clock := newTestTimer(t)

	tm.Pause()
	assert.True(t, tm.IsStopped())
	tm.Resume()
	assert.True(t, tm.IsStopped())

	tm.Start(10)
	tm.Resume()
	assert.True(t, tm.IsRunning())

	tm.Pause()
	startedAt := tm.startedAt
	clock.Advance(time.Second)
	tm.Pause()
	assert.True(t, tm.IsPaused())
	assert.Equal(t, startedAt, tm.startedAt)
}

func TestResume_KeepsAccumulatedTime(t *testing.T) {
	tm, clock := newTestTimer(t)
	tm.Start(10)
	clock.Advance(3 * time.Second)
	tm.Pause()
	clock.Advance(time.Hour)
	tm.Resume()
	clock.Advance(2 * time.Second)
	tm.Update()

	assert.True(t, tm.IsRunning())
	assert.Equal(t, 5, tm.TimeLeft())
	assert.Equal(t, 5*time.Second, tm.Elapsed())
}

func TestPauseResume_SubSecondSegmentsDoNotDrift(t *testing.T) {
	tm, clock := newTestTimer(t)
	tm.Start(10)

	// Ten segments of 900ms each: 9s of running time in total.
	for i := 0; i < 10; i++ {
		clock.Advance(900 * time.Millisecond)
		tm.Pause()
		clock.Advance(5 * time.Second)
		tm.Resume()
	}
	tm.Update()

	assert.Equal(t, 1, tm.TimeLeft())
	assert.Equal(t, 9*time.Second, tm.Elapsed())
}

func TestReset(t *testing.T) {
	tm, clock := newTestTimer(t)
	tm.Start(5)
	clock.Advance(10 * time.Second)
	tm.Update()
	tm.SetNotificationSent()

	tm.Reset()

	assert.True(t, tm.IsStopped())
	assert.Equal(t, 0, tm.Total())
	assert.Equal(t, 0, tm.TimeLeft())
	assert.False(t, tm.IsNotificationSent())
	assert.Equal(t, time.Duration(0), tm.Elapsed())
}

func TestUpdate_ClockMovingBackwards(t *testing.T) {
	clock := &stepClock{now: epoch}
	tm := New(clock)
	tm.Start(10)

	clock.now = epoch.Add(-time.Hour)
	tm.Update()

	assert.True(t, tm.IsRunning())
	assert.Equal(t, 10, tm.TimeLeft())
}

// ─── Driven Sequences ───────────────────────────────────────────────────────

func TestPauseDoesNotCountTowardsElapsed(t *testing.T) {
	tm, clock := newTestTimer(t)
	ticks := 0
	clock.Schedule(time.Second, func() {
		ticks++
		tm.Update()
	})

	tm.Start(10)
	startedAt := clock.Now()
	clock.Advance(3 * time.Second)
	tm.Pause()
	pausedAt := clock.Now()
	clock.Advance(5 * time.Second)
	tm.Resume()
	pausedFor := clock.Now().Sub(pausedAt)

	for !tm.IsFinished() {
		clock.Advance(time.Second)
		require.Less(t, ticks, 100, "timer never finished")
	}

	running := clock.Now().Sub(startedAt) - pausedFor
	assert.InDelta(t, 10*time.Second, running, float64(time.Second))
	assert.Equal(t, 5*time.Second, pausedFor)
	assert.Equal(t, 0, tm.TimeLeft())
}

func TestSingleUpdateAfterLongGap(t *testing.T) {
	tm, clock := newTestTimer(t)
	ticks := 0
	clock.Schedule(time.Second, func() {
		ticks++
		tm.Update()
	})

	tm.Start(5)
	clock.Jump(3600 * time.Second)

	assert.Equal(t, 1, ticks)
	assert.True(t, tm.IsFinished())
	assert.Equal(t, 0, tm.TimeLeft())
}

func TestCancelledDriverFreezesTimeLeft(t *testing.T) {
	tm, clock := newTestTimer(t)
	h := clock.Schedule(time.Second, tm.Update)

	tm.Start(60)
	clock.Advance(5 * time.Second)
	clock.Cancel(h)
	clock.Advance(30 * time.Second)

	assert.True(t, tm.IsRunning(), "cancelling the driver is not a pause")
	assert.Equal(t, 55, tm.TimeLeft())

	tm.Update()
	assert.Equal(t, 25, tm.TimeLeft())
}

// ─── Notification Flag ──────────────────────────────────────────────────────

func TestNotificationSent_Lifecycle(t *testing.T) {
	tm, clock := newTestTimer(t)
	tm.Start(2)

	tm.SetNotificationSent()
	assert.False(t, tm.IsNotificationSent(), "never set outside Finished")

	clock.Advance(2 * time.Second)
	tm.Update()
	require.True(t, tm.IsFinished())
	assert.False(t, tm.IsNotificationSent())

	tm.SetNotificationSent()
	assert.True(t, tm.IsNotificationSent())

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		tm.Update()
	}
	assert.True(t, tm.IsFinished())
	assert.True(t, tm.IsNotificationSent())

	tm.SetNotificationSent()
	assert.True(t, tm.IsNotificationSent())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "finished", Finished.String())
}

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }
