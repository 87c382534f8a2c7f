// Package metrics provides Prometheus metrics for countdown.
// Counters, gauges and histograms for the countdown lifecycle, the periodic
// driver, input parsing, alerts and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Countdown ──────────────────────────────────────────────────────────────

// TimerStarts tracks countdowns started.
var TimerStarts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "countdown",
	Name:      "timer_starts_total",
	Help:      "Total countdowns started.",
})

// TimerFinishes tracks countdowns that reached zero.
var TimerFinishes = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "countdown",
	Name:      "timer_finishes_total",
	Help:      "Total countdowns that ran to completion.",
})

// TimerTransitions tracks control operations by name (pause, resume, stop).
var TimerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "countdown",
	Name:      "timer_transitions_total",
	Help:      "Total control operations applied to the countdown.",
}, []string{"op"})

// TimeLeft tracks the seconds left as of the last tick.
var TimeLeft = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "countdown",
	Name:      "time_left_seconds",
	Help:      "Seconds left on the countdown as of the last tick.",
})

// Phase tracks the current phase (0=Stopped, 1=Running, 2=Paused, 3=Finished).
var Phase = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "countdown",
	Name:      "phase",
	Help:      "Current phase (0=Stopped, 1=Running, 2=Paused, 3=Finished).",
})

// ─── Driver ─────────────────────────────────────────────────────────────────

// Ticks tracks calls made by the periodic driver.
var Ticks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "countdown",
	Name:      "ticks_total",
	Help:      "Total ticks delivered by the periodic driver.",
})

// TickGap tracks the wall-clock time between consecutive ticks. Large values
// mean the host was suspended.
var TickGap = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "countdown",
	Name:      "tick_gap_seconds",
	Help:      "Wall-clock time between consecutive ticks.",
	Buckets:   []float64{0.5, 1, 1.5, 2, 5, 30, 300, 3600},
})

// ─── Input ──────────────────────────────────────────────────────────────────

// InputRejected tracks committed inputs that parsed to zero seconds.
var InputRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "countdown",
	Name:      "input_rejected_total",
	Help:      "Committed inputs that did not yield a positive duration.",
}, []string{"format"})

// ─── Alerts ─────────────────────────────────────────────────────────────────

// AlertsDispatched tracks completion alerts by result (delivered, failed).
var AlertsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "countdown",
	Name:      "alerts_dispatched_total",
	Help:      "Completion alerts dispatched, by result.",
}, []string{"result"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "countdown",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
