// Package health provides periodic health checks with auto-recovery.
// Three checks run every 30 seconds: the settings database, the freshness of
// the periodic driver and the alert sound.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tutu-network/countdown/internal/infra/metrics"
)

// DefaultInterval is how often the checks run.
const DefaultInterval = 30 * time.Second

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Pinger is satisfied by sqlite.DB.
type Pinger interface {
	Ping() error
}

// Driver is satisfied by countdown.Service.
type Driver interface {
	Attached() bool
	LastTick() time.Time
	TickInterval() time.Duration
}

// SoundResolver is satisfied by alert.Dispatcher.
type SoundResolver interface {
	ResolveSoundFile() (string, error)
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewChecker creates a health checker with the standard checks. Any
// collaborator may be nil, which drops its check.
func NewChecker(db Pinger, driver Driver, sound SoundResolver, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Checker{
		interval: DefaultInterval,
		now:      time.Now,
		logger:   logger,
	}

	if db != nil {
		c.checks = append(c.checks, Check{
			Name: "sqlite",
			CheckFn: func(ctx context.Context) error {
				return db.Ping()
			},
		})
	}
	if driver != nil {
		c.checks = append(c.checks, Check{
			Name: "driver",
			CheckFn: func(ctx context.Context) error {
				return checkDriver(driver, c.now())
			},
		})
	}
	if sound != nil {
		c.checks = append(c.checks, Check{
			Name: "alert_sound",
			CheckFn: func(ctx context.Context) error {
				_, err := sound.ResolveSoundFile()
				return err
			},
		})
	}
	return c
}

// Add registers an extra check.
func (c *Checker) Add(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check)
}

// SetInterval overrides how often Run repeats the checks.
func (c *Checker) SetInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce runs every check once and stores the results.
func (c *Checker) RunOnce(ctx context.Context) {
	c.mu.RLock()
	checks := make([]Check, len(c.checks))
	copy(checks, c.checks)
	c.mu.RUnlock()

	statuses := make([]Status, len(checks))
	for i, check := range checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: c.now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
			c.logger.Warn("health check failed", zap.String("check", check.Name), zap.Error(err))
			if check.RecoverFn != nil {
				if rerr := check.RecoverFn(ctx); rerr != nil {
					c.logger.Warn("health recovery failed", zap.String("check", check.Name), zap.Error(rerr))
				}
			}
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		} else {
			s.Healthy = true
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

// staleTicks is how many intervals may pass without a tick before the
// driver counts as stalled.
const staleTicks = 5

func checkDriver(d Driver, now time.Time) error {
	if !d.Attached() {
		return nil
	}
	gap := now.Sub(d.LastTick())
	if limit := staleTicks * d.TickInterval(); gap > limit {
		return fmt.Errorf("no tick for %s (limit %s)", gap.Round(time.Millisecond), limit)
	}
	return nil
}
