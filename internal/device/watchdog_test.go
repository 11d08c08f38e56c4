package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canlab/cansim/internal/domain"
	"github.com/canlab/cansim/pkg/log"
)

func TestWatchdogTimesOutAfterDeadline(t *testing.T) {
	start := minuteAt(0)
	m := NewMonitor(500*time.Millisecond, start, log.NewNoopLogger())

	assert.Equal(t, domain.WatchdogOK, m.Check(start.Add(500*time.Millisecond)),
		"exactly at the deadline is still OK")
	assert.Equal(t, domain.WatchdogTimedOut, m.Check(start.Add(501*time.Millisecond)),
		"past the deadline must trigger")
	assert.Equal(t, domain.WatchdogTimedOut, m.Status(), "timeout latches until reset")
}

func TestWatchdogResetReturnsToOK(t *testing.T) {
	start := minuteAt(0)
	m := NewMonitor(500*time.Millisecond, start, log.NewNoopLogger())

	require.Equal(t, domain.WatchdogTimedOut, m.Check(start.Add(time.Second)))

	resetAt := start.Add(2 * time.Second)
	m.Reset(resetAt)
	assert.Equal(t, domain.WatchdogOK, m.Status())

	// deadline countdown restarts from the reset instant
	assert.Equal(t, domain.WatchdogOK, m.Check(resetAt.Add(400*time.Millisecond)))
	assert.Equal(t, domain.WatchdogTimedOut, m.Check(resetAt.Add(600*time.Millisecond)))
}

func TestWatchdogResetWhileOKRestartsCountdown(t *testing.T) {
	start := minuteAt(0)
	m := NewMonitor(500*time.Millisecond, start, log.NewNoopLogger())

	m.Reset(start.Add(400 * time.Millisecond))
	assert.Equal(t, domain.WatchdogOK, m.Check(start.Add(800*time.Millisecond)),
		"800ms after start is only 400ms after the reset")
}

func TestSetAutoIntervalValidation(t *testing.T) {
	m := NewMonitor(500*time.Millisecond, minuteAt(0), log.NewNoopLogger())

	require.NoError(t, m.SetAutoInterval(5))
	st := m.State()
	assert.True(t, st.AutoEnabled)
	assert.Equal(t, 5*time.Second, st.AutoInterval)

	require.NoError(t, m.SetAutoInterval(0), "zero disables automatic mode")
	assert.False(t, m.State().AutoEnabled)

	assert.ErrorIs(t, m.SetAutoInterval(-1), domain.ErrInvalidInterval)
	assert.ErrorIs(t, m.SetAutoInterval(51), domain.ErrInvalidInterval)
	assert.Equal(t, time.Duration(0), m.AutoInterval(), "failed set leaves state unchanged")

	require.NoError(t, m.SetAutoInterval(50), "upper bound is inclusive")
}

func TestWatchdogStatusString(t *testing.T) {
	assert.Equal(t, "ok", domain.WatchdogOK.String())
	assert.Equal(t, "triggered", domain.WatchdogTimedOut.String())
}
