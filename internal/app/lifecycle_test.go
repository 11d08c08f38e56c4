package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canlab/cansim/internal/domain"
	"github.com/canlab/cansim/pkg/log"
)

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

func TestNewLifecycle(t *testing.T) {
	l := NewLifecycle(log.NewNoopLogger(), nil)
	require.NotNil(t, l)
	assert.Equal(t, StateStopped, l.State())
	assert.True(t, l.CanStart())
	assert.False(t, l.CanStop())
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStopped, "Stopped"},
		{StateStarting, "Starting"},
		{StateRunning, "Running"},
		{StateStopping, "Stopping"},
		{StateCrashed, "Crashed"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestTransitionToValidPath(t *testing.T) {
	emitter := &mockEmitter{}
	l := NewLifecycle(log.NewNoopLogger(), emitter)

	require.NoError(t, l.TransitionTo(StateStarting, "start requested"))
	require.NoError(t, l.TransitionTo(StateRunning, "tasks scheduled"))
	assert.True(t, l.CanStop())
	require.NoError(t, l.TransitionTo(StateStopping, "stop requested"))
	require.NoError(t, l.TransitionTo(StateStopped, "tasks drained"))

	events := emitter.Events()
	require.Len(t, events, 4)
	assert.Equal(t, StateStopped, events[0].previous)
	assert.Equal(t, StateStarting, events[0].current)
	assert.Equal(t, "start requested", events[0].reason)
}

func TestTransitionToInvalid(t *testing.T) {
	l := NewLifecycle(log.NewNoopLogger(), nil)

	assert.ErrorIs(t, l.TransitionTo(StateRunning, "skip starting"), domain.ErrNotRunning)

	require.NoError(t, l.TransitionTo(StateStarting, ""))
	assert.ErrorIs(t, l.TransitionTo(StateStopped, "skip running"), domain.ErrAlreadyRunning)
}

func TestCrashedCanRestart(t *testing.T) {
	l := NewLifecycle(log.NewNoopLogger(), nil)
	require.NoError(t, l.TransitionTo(StateStarting, ""))
	require.NoError(t, l.TransitionTo(StateCrashed, "startup failure"))
	assert.True(t, l.CanStart())
	require.NoError(t, l.TransitionTo(StateStarting, "retry"))
}

func TestCancel(t *testing.T) {
	l := NewLifecycle(log.NewNoopLogger(), nil)

	l.Cancel() // no cancel registered yet, must not panic

	ctx, cancel := context.WithCancel(context.Background())
	l.SetCancel(cancel)
	l.Cancel()
	select {
	case <-ctx.Done():
	default:
		t.Fatal("Cancel did not cancel the context")
	}
}

func TestWaitWithTimeout(t *testing.T) {
	l := NewLifecycle(log.NewNoopLogger(), nil)

	l.AddWorker()
	go func() {
		time.Sleep(10 * time.Millisecond)
		l.WorkerDone()
	}()
	assert.NoError(t, l.WaitWithTimeout(time.Second))

	l.AddWorker()
	defer l.WorkerDone()
	assert.ErrorIs(t, l.WaitWithTimeout(20*time.Millisecond), domain.ErrShutdownTimeout)
}
