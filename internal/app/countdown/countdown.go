// Package countdown is the session service around the countdown core.
//
// It plays the part of the panel applet: it owns the input text, turns
// commits into Timer.Start calls, ticks the timer from a scheduler, fires
// the completion alert exactly once per finished countdown and renders the
// label and style tag for any display.
//
// The timer core is not safe for concurrent use. Service serialises every
// call with one mutex because the HTTP API and the driver call it from
// different goroutines.
package countdown

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/tutu-network/countdown/internal/domain"
	"github.com/tutu-network/countdown/internal/infra/metrics"
	"github.com/tutu-network/countdown/internal/infra/scheduler"
	"github.com/tutu-network/countdown/internal/timeinput"
	"github.com/tutu-network/countdown/internal/timer"
)

// DefaultInput is the input restored when nothing was committed before.
const DefaultInput = "1:00:00"

// DefaultMaxInputLength caps the input field, in runes.
const DefaultMaxInputLength = 12

// Config controls the session.
type Config struct {
	DefaultInput   string
	TickInterval   time.Duration
	MaxInputLength int
	AutoStart      bool // start the restored input right away
}

// Deps are the collaborators of a Service. Alerts may be nil.
type Deps struct {
	Clock    timer.Clock
	Settings domain.SettingsStore
	Alerts   domain.AlertDispatcher
	Logger   *zap.Logger
}

// Service is one countdown session.
type Service struct {
	mu     sync.Mutex
	cfg    Config
	timer  *timer.Timer
	clock  timer.Clock
	input  string
	newID  func() string
	sched  scheduler.Scheduler
	handle scheduler.Handle

	settings domain.SettingsStore
	alerts   domain.AlertDispatcher
	logger   *zap.Logger

	lastTick atomic.Time
}

// New creates a stopped session. Call Restore to load the last input.
func New(cfg Config, deps Deps) *Service {
	if cfg.DefaultInput == "" {
		cfg.DefaultInput = DefaultInput
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = scheduler.DefaultInterval
	}
	if cfg.MaxInputLength <= 0 {
		cfg.MaxInputLength = DefaultMaxInputLength
	}
	if deps.Clock == nil {
		deps.Clock = timer.SystemClock
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		cfg:      cfg,
		timer:    timer.New(deps.Clock),
		clock:    deps.Clock,
		input:    cfg.DefaultInput,
		newID:    uuid.NewString,
		settings: deps.Settings,
		alerts:   deps.Alerts,
		logger:   deps.Logger,
	}
}

// Restore loads the last committed input, falling back to the configured
// default, and starts it when AutoStart is set.
func (s *Service) Restore() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings != nil {
		last, err := s.settings.LastTimerInput()
		if err != nil {
			s.logger.Warn("read last timer input", zap.Error(err))
		}
		if strings.TrimSpace(last) != "" {
			s.input = last
		}
	}

	if s.cfg.AutoStart {
		if _, err := s.submitLocked(s.input); err != nil {
			s.logger.Warn("auto start", zap.String("input", s.input), zap.Error(err))
		}
	}
	return s.snapshotLocked()
}

// ─── Input ──────────────────────────────────────────────────────────────────

// Filter runs the live-typing filter over text and makes the result the
// current input. It returns the corrected text.
func (s *Service) Filter(text string) string {
	text = s.clean(text)

	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
	return text
}

// SetInput filters text and remembers it as the input for the next session.
func (s *Service) SetInput(text string) (string, error) {
	text = s.Filter(text)
	if s.settings == nil {
		return text, nil
	}
	if err := s.settings.SetLastTimerInput(text); err != nil {
		return text, fmt.Errorf("save last timer input: %w", err)
	}
	return text, nil
}

// clean caps text at MaxInputLength runes and applies the live-typing filter.
func (s *Service) clean(text string) string {
	if r := []rune(text); len(r) > s.cfg.MaxInputLength {
		text = string(r[:s.cfg.MaxInputLength])
	}
	return timeinput.Sanitize(text)
}

// Input returns the current input text.
func (s *Service) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// ─── Controls ───────────────────────────────────────────────────────────────

// Submit commits text and starts a countdown for it. The text goes through
// the same filter as typed input before it is parsed. Empty text commits the
// current input. Text that does not yield a positive duration leaves the
// timer untouched and returns domain.ErrInvalidDuration.
func (s *Service) Submit(text string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		text = s.input
	}
	return s.submitLocked(text)
}

func (s *Service) submitLocked(text string) (Snapshot, error) {
	text = s.clean(strings.TrimSpace(text))
	seconds := timeinput.ParseDuration(text)
	if seconds <= 0 {
		metrics.InputRejected.WithLabelValues(timeinput.ClassifyFormat(text).String()).Inc()
		return s.snapshotLocked(), fmt.Errorf("%w: %q", domain.ErrInvalidDuration, text)
	}

	s.input = text
	if s.settings != nil {
		if err := s.settings.SetLastTimerInput(text); err != nil {
			s.logger.Warn("save last timer input", zap.Error(err))
		}
	}

	s.timer.Start(seconds)
	metrics.TimerStarts.Inc()
	s.observeLocked()
	s.logger.Info("countdown started",
		zap.String("input", text),
		zap.Int("seconds", seconds),
	)
	return s.snapshotLocked(), nil
}

// Resume continues a paused countdown. From Stopped or Finished it commits
// the current input instead, like the play button of the panel.
func (s *Service) Resume() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer.IsStopped() || s.timer.IsFinished() {
		return s.submitLocked(s.input)
	}
	s.transitionLocked("resume", s.timer.Resume)
	return s.snapshotLocked(), nil
}

// Pause freezes a running countdown.
func (s *Service) Pause() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transitionLocked("pause", s.timer.Pause)
	return s.snapshotLocked()
}

// Stop resets the countdown.
func (s *Service) Stop() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transitionLocked("stop", s.timer.Reset)
	return s.snapshotLocked()
}

// ─── Driver ─────────────────────────────────────────────────────────────────

// Tick reconciles the timer with the clock and, the first time it sees the
// countdown finished, dispatches the completion alert. Dispatch failures are
// logged; the alert is never retried.
func (s *Service) Tick(ctx context.Context) {
	s.mu.Lock()
	now := s.clock.Now()
	if prev := s.lastTick.Load(); !prev.IsZero() {
		metrics.TickGap.Observe(now.Sub(prev).Seconds())
	}
	s.lastTick.Store(now)
	metrics.Ticks.Inc()

	s.timer.Update()
	s.observeLocked()

	var pending *domain.Alert
	if s.timer.IsFinished() && !s.timer.IsNotificationSent() {
		s.timer.SetNotificationSent()
		metrics.TimerFinishes.Inc()
		pending = &domain.Alert{
			ID:           s.newID(),
			TotalSeconds: s.timer.Total(),
			FinishedAt:   now,
		}
	}
	s.mu.Unlock()

	if pending == nil {
		return
	}
	s.logger.Info("countdown finished",
		zap.String("alert", pending.ID),
		zap.Int("seconds", pending.TotalSeconds),
	)
	if s.alerts == nil {
		return
	}
	if err := s.alerts.Dispatch(ctx, *pending); err != nil {
		s.logger.Warn("dispatch alert", zap.String("alert", pending.ID), zap.Error(err))
	}
}

// Attach makes sched tick the session every TickInterval. Attaching twice
// keeps the first driver.
func (s *Service) Attach(ctx context.Context, sched scheduler.Scheduler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched != nil {
		return
	}
	s.sched = sched
	s.lastTick.Store(s.clock.Now())
	s.handle = sched.Schedule(s.cfg.TickInterval, func() { s.Tick(ctx) })
}

// Detach cancels the driver. The time left freezes at its last value and the
// phase is unchanged; this is not a pause.
func (s *Service) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched == nil {
		return
	}
	s.sched.Cancel(s.handle)
	s.sched = nil
	s.handle = 0
}

// Attached reports whether a driver is ticking the session.
func (s *Service) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

// LastTick returns when the session was last ticked (or attached).
func (s *Service) LastTick() time.Time {
	return s.lastTick.Load()
}

// TickInterval returns the configured driver interval.
func (s *Service) TickInterval() time.Duration {
	return s.cfg.TickInterval
}

// ─── Display ────────────────────────────────────────────────────────────────

// Snapshot returns the current display state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:            s.timer.Phase().String(),
		TotalSeconds:     s.timer.Total(),
		TimeLeftSeconds:  s.timer.TimeLeft(),
		Label:            timeinput.FormatSeconds(s.timer.TimeLeft()),
		Style:            StyleFor(s.timer),
		NotificationSent: s.timer.IsNotificationSent(),
		Input:            s.input,
		Controls:         ControlsFor(s.timer),
	}
}

// transitionLocked applies op and counts it only when the phase changed.
func (s *Service) transitionLocked(name string, op func()) {
	before := s.timer.Phase()
	op()
	if s.timer.Phase() != before {
		metrics.TimerTransitions.WithLabelValues(name).Inc()
	}
	s.observeLocked()
}

func (s *Service) observeLocked() {
	metrics.TimeLeft.Set(float64(s.timer.TimeLeft()))
	metrics.Phase.Set(float64(s.timer.Phase()))
}
