package cansim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canlab/cansim/internal/domain"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

type recordingHandler struct {
	mu       sync.Mutex
	changes  []StateChangeEvent
	timeouts []WatchdogTimeoutEvent
}

func (h *recordingHandler) OnStateChange(e StateChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.changes = append(h.changes, e)
}

func (h *recordingHandler) OnWatchdogTimeout(e WatchdogTimeoutEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timeouts = append(h.timeouts, e)
}

func (h *recordingHandler) states() []State {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]State, len(h.changes))
	for i, c := range h.changes {
		out[i] = c.Current
	}
	return out
}

func (h *recordingHandler) timeoutCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.timeouts)
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scale = -1
	_, err := New(cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.WatchdogAutoInterval = 99
	_, err = New(cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNewFillsDefaults(t *testing.T) {
	sim, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, StateStopped, sim.Status())
	assert.Equal(t, 10.0, sim.config.FrameRate)
	assert.Equal(t, 500*time.Millisecond, sim.config.WatchdogDeadline)
}

func TestStartStop(t *testing.T) {
	handler := &recordingHandler{}
	sim, err := New(DefaultConfig(), WithEventHandler(handler))
	require.NoError(t, err)

	require.NoError(t, sim.Start(context.Background()))
	assert.Equal(t, StateRunning, sim.Status())

	assert.ErrorIs(t, sim.Start(context.Background()), domain.ErrAlreadyRunning)

	require.NoError(t, sim.Stop())
	assert.Equal(t, StateStopped, sim.Status())
	assert.ErrorIs(t, sim.Stop(), domain.ErrNotRunning)

	assert.Equal(t,
		[]State{StateStarting, StateRunning, StateStopping, StateStopped},
		handler.states())
}

func TestCommandsRoundTrip(t *testing.T) {
	sim, err := New(DefaultConfig())
	require.NoError(t, err)

	_, err = sim.SetControlValue(200)
	require.NoError(t, err)
	_, err = sim.SetControlValue(256)
	assert.ErrorIs(t, err, domain.ErrInvalidControlValue)

	_, err = sim.SetWatchdogInterval(5)
	require.NoError(t, err)
	_, err = sim.SetWatchdogInterval(51)
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)

	_, err = sim.ResetWatchdog()
	require.NoError(t, err)

	snap := sim.Snapshot()
	assert.Equal(t, 200, snap.DeviceB.ControlValue)
	assert.Equal(t, 5*time.Second, snap.Watchdog.AutoInterval)
	assert.True(t, snap.Watchdog.AutoEnabled)
}

func TestHaltStopsEverything(t *testing.T) {
	sim, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, sim.Start(context.Background()))

	_, err = sim.Halt()
	require.NoError(t, err)

	waitFor(t, 2*time.Second, func() bool {
		return sim.Status() == StateStopped
	})

	_, err = sim.SetControlValue(1)
	assert.ErrorIs(t, err, domain.ErrHalted)

	// Reads stay valid after halt.
	snap := sim.Snapshot()
	assert.False(t, snap.Clock.HaltedAt.IsZero())
}

func TestFrameSinkReceivesFrames(t *testing.T) {
	var mu sync.Mutex
	var frames []Frame
	sink := FrameSinkFunc(func(raw []byte, f Frame) {
		mu.Lock()
		defer mu.Unlock()
		frames = append(frames, f)
	})

	cfg := DefaultConfig()
	cfg.Scale = 0.01 // run fast so status frames arrive quickly
	sim, err := New(cfg, WithFrameSink(sink))
	require.NoError(t, err)
	require.NoError(t, sim.Start(context.Background()))
	defer sim.Stop()

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(frames) >= 4
	})

	mu.Lock()
	defer mu.Unlock()
	seen := map[uint32]bool{}
	for _, f := range frames {
		seen[f.ID] = true
	}
	assert.True(t, seen[domain.DeviceAStatusID])
	assert.True(t, seen[domain.DeviceBStatusID])
}

func TestWatchdogTimeoutEventFiresOnce(t *testing.T) {
	handler := &recordingHandler{}
	cfg := DefaultConfig()
	cfg.Scale = 0.01
	sim, err := New(cfg, WithEventHandler(handler))
	require.NoError(t, err)
	require.NoError(t, sim.Start(context.Background()))
	defer sim.Stop()

	// No resets are sent, so the deadline expires shortly after start.
	waitFor(t, 2*time.Second, func() bool {
		return handler.timeoutCount() >= 1
	})

	// The event fires on the transition only, not on every check.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, handler.timeoutCount())
}

type initFailPlugin struct{}

func (p *initFailPlugin) Name() string { return "initfail" }
func (p *initFailPlugin) Initialize(ctx context.Context, cfg PluginConfig) error {
	return assert.AnError
}
func (p *initFailPlugin) Shutdown(ctx context.Context) error { return nil }

func TestPluginInitFailureCrashes(t *testing.T) {
	sim, err := New(DefaultConfig(), WithPlugin(&initFailPlugin{}))
	require.NoError(t, err)

	err = sim.Start(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, StateCrashed, sim.Status())
}

type recordingPlugin struct {
	mu         sync.Mutex
	name       string
	shutdowns  *[]string
	gotControl bool
}

func (p *recordingPlugin) Name() string { return p.name }
func (p *recordingPlugin) Initialize(ctx context.Context, cfg PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gotControl = cfg.Controls != nil
	return nil
}
func (p *recordingPlugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	*p.shutdowns = append(*p.shutdowns, p.name)
	return nil
}

func TestPluginsShutdownInReverseOrder(t *testing.T) {
	var shutdowns []string
	p1 := &recordingPlugin{name: "one", shutdowns: &shutdowns}
	p2 := &recordingPlugin{name: "two", shutdowns: &shutdowns}

	sim, err := New(DefaultConfig(), WithPlugin(p1), WithPlugin(p2))
	require.NoError(t, err)
	require.NoError(t, sim.Start(context.Background()))
	require.NoError(t, sim.Stop())

	assert.Equal(t, []string{"two", "one"}, shutdowns)
	assert.True(t, p1.gotControl)
}
