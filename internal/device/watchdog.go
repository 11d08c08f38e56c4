package device

import (
	"sync"
	"time"

	"github.com/canlab/cansim/internal/domain"
	"github.com/canlab/cansim/internal/ports"
)

// DefaultWatchdogDeadline is the hard timeout-detection deadline in
// virtual time. It is independent of the configurable auto-reset
// interval: operators may set an auto interval above the deadline, or
// disable auto resets entirely, and deliberately run into timeouts.
const DefaultWatchdogDeadline = 500 * time.Millisecond

// Monitor tracks the watchdog deadline over device B's watchdog
// register. OK transitions to TimedOut once the virtual time since the
// last reset exceeds the deadline; any reset returns it to OK. A timeout
// is an observable status, never an error.
type Monitor struct {
	deadline time.Duration
	logger   ports.Logger

	mu           sync.Mutex
	status       domain.WatchdogStatus
	lastResetAt  time.Time
	autoInterval time.Duration
}

// NewMonitor creates a monitor whose deadline countdown starts at the
// virtual instant now.
func NewMonitor(deadline time.Duration, now time.Time, logger ports.Logger) *Monitor {
	if deadline <= 0 {
		deadline = DefaultWatchdogDeadline
	}
	return &Monitor{
		deadline:    deadline,
		logger:      logger,
		lastResetAt: now,
	}
}

// Reset returns the monitor to OK and restarts the deadline countdown
// at the virtual instant now. Manual and automatic resets both land
// here.
func (m *Monitor) Reset(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == domain.WatchdogTimedOut {
		m.logger.Info("watchdog recovered", ports.Time("reset_at", now))
	}
	m.status = domain.WatchdogOK
	m.lastResetAt = now
}

// Check evaluates the deadline at the virtual instant now and returns
// the resulting status. The OK -> TimedOut transition fires exactly when
// the elapsed virtual time exceeds the deadline.
func (m *Monitor) Check(now time.Time) domain.WatchdogStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == domain.WatchdogOK && now.Sub(m.lastResetAt) > m.deadline {
		m.status = domain.WatchdogTimedOut
		m.logger.Warn("watchdog triggered",
			ports.Duration("deadline", m.deadline),
			ports.Time("last_reset", m.lastResetAt))
	}
	return m.status
}

// Status returns the current status without evaluating the deadline.
func (m *Monitor) Status() domain.WatchdogStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// SetAutoInterval configures the automatic reset period in whole
// virtual seconds. Zero disables automatic resets; values outside 0..50
// fail with domain.ErrInvalidInterval and leave the monitor unchanged.
func (m *Monitor) SetAutoInterval(seconds int) error {
	if seconds < domain.MinWatchdogInterval || seconds > domain.MaxWatchdogInterval {
		return domain.ErrInvalidInterval
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoInterval = time.Duration(seconds) * time.Second
	return nil
}

// AutoInterval returns the automatic reset period (0 = disabled).
func (m *Monitor) AutoInterval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.autoInterval
}

// State returns the monitor's observable status as a value copy.
func (m *Monitor) State() domain.WatchdogState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.WatchdogState{
		Status:       m.status,
		LastResetAt:  m.lastResetAt,
		AutoEnabled:  m.autoInterval > 0,
		AutoInterval: m.autoInterval,
	}
}
