package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Manual is a simulated clock and scheduler. Time only moves when Advance or
// Jump is called, which makes tick sequences deterministic in tests.
// It satisfies timer.Clock.
type Manual struct {
	mu   sync.Mutex
	now  time.Time
	last Handle
	jobs map[Handle]*manualJob
}

type manualJob struct {
	interval time.Duration
	due      time.Time
	fn       func()
}

// NewManual creates a simulated clock that reads start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start, jobs: make(map[Handle]*manualJob)}
}

// Now returns the simulated time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Schedule implements Scheduler. The first call is due one interval from now.
func (m *Manual) Schedule(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.last++
	m.jobs[m.last] = &manualJob{interval: interval, due: m.now.Add(interval), fn: fn}
	return m.last
}

// Cancel implements Scheduler.
func (m *Manual) Cancel(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, h)
}

// Active returns the number of live handles.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Advance moves the clock forward by d, firing every callback that falls due
// on the way, in due order, with the clock set to the due instant.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		_, job := m.earliestDue(target)
		if job == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = job.due
		job.due = job.due.Add(job.interval)
		fn := job.fn
		m.mu.Unlock()

		fn()
	}
}

// Jump moves the clock forward by d without delivering the ticks in between,
// the way a suspended host does. Each overdue callback fires once, late.
func (m *Manual) Jump(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	var overdue []Handle
	for h, job := range m.jobs {
		if !job.due.After(m.now) {
			job.due = m.now.Add(job.interval)
			overdue = append(overdue, h)
		}
	}
	m.mu.Unlock()

	sort.Slice(overdue, func(i, j int) bool { return overdue[i] < overdue[j] })
	for _, h := range overdue {
		m.mu.Lock()
		job, ok := m.jobs[h]
		m.mu.Unlock()
		if ok {
			job.fn()
		}
	}
}

// earliestDue returns the job due soonest at or before target. Ties go to
// the older handle. Callers hold m.mu.
func (m *Manual) earliestDue(target time.Time) (Handle, *manualJob) {
	var (
		bestH Handle
		best  *manualJob
	)
	for h, job := range m.jobs {
		if job.due.After(target) {
			continue
		}
		if best == nil || job.due.Before(best.due) || (job.due.Equal(best.due) && h < bestH) {
			bestH, best = h, job
		}
	}
	return bestH, best
}
