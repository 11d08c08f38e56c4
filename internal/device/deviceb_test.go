package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canlab/cansim/internal/domain"
	"github.com/canlab/cansim/pkg/canframe"
	"github.com/canlab/cansim/pkg/log"
)

func newTestDeviceB(t *testing.T) (*DeviceB, *Monitor, time.Time) {
	t.Helper()
	start := minuteAt(0)
	m := NewMonitor(500*time.Millisecond, start, log.NewNoopLogger())
	return NewDeviceB(100*time.Millisecond, m, log.NewNoopLogger()), m, start
}

func controlFrame(t *testing.T, value byte) canframe.Frame {
	t.Helper()
	f, err := canframe.New(false, false, domain.ControlFrameID, []byte{value})
	require.NoError(t, err)
	return f
}

func watchdogFrame(t *testing.T) canframe.Frame {
	t.Helper()
	f, err := canframe.New(false, false, domain.WatchdogFrameID, []byte{domain.WatchdogResetValue})
	require.NoError(t, err)
	return f
}

func TestDeviceBControlSet(t *testing.T) {
	d, _, start := newTestDeviceB(t)

	at := start.Add(time.Second)
	require.NoError(t, d.Receive(controlFrame(t, 128), at))

	st := d.State()
	assert.Equal(t, 128, st.ControlValue)
	assert.Equal(t, at, st.LastCommandAt)
	assert.Equal(t, byte(0), st.WatchdogRegister, "control path must not touch the watchdog register")

	// the next status frame reflects the applied command
	frame, ok := d.Tick(at.Add(100 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, byte(128), frame.Data[1])
}

func TestDeviceBControlValidation(t *testing.T) {
	d, _, start := newTestDeviceB(t)

	require.NoError(t, d.SetControl(10, start))
	err := d.SetControl(300, start.Add(time.Second))
	assert.ErrorIs(t, err, domain.ErrInvalidControlValue)

	err = d.SetControl(-1, start.Add(time.Second))
	assert.ErrorIs(t, err, domain.ErrInvalidControlValue)

	st := d.State()
	assert.Equal(t, 10, st.ControlValue, "rejected command leaves state unchanged")
	assert.Equal(t, start, st.LastCommandAt)
}

func TestDeviceBWatchdogReset(t *testing.T) {
	d, m, start := newTestDeviceB(t)

	// let the monitor trip first
	require.Equal(t, domain.WatchdogTimedOut, m.Check(start.Add(time.Second)))

	resetAt := start.Add(2 * time.Second)
	require.NoError(t, d.Receive(watchdogFrame(t), resetAt))

	st := d.State()
	assert.Equal(t, domain.WatchdogResetValue, st.WatchdogRegister)
	assert.Equal(t, 0, st.ControlValue, "watchdog path must not touch the control register")
	assert.Equal(t, domain.WatchdogOK, m.Status())
}

func TestDeviceBStatusFrame(t *testing.T) {
	d, m, start := newTestDeviceB(t)
	require.NoError(t, d.Receive(controlFrame(t, 42), start))
	require.NoError(t, d.Receive(watchdogFrame(t), start))

	frame, ok := d.Tick(start.Add(100 * time.Millisecond))
	require.True(t, ok)

	assert.True(t, frame.Extended)
	assert.Equal(t, domain.DeviceBStatusID, frame.ID)
	require.Equal(t, uint8(4), frame.Length)
	assert.Equal(t, byte(0x00), frame.Data[0])
	assert.Equal(t, byte(42), frame.Data[1])
	assert.Equal(t, domain.WatchdogResetValue, frame.Data[2])
	assert.Equal(t, byte(0x01), frame.Data[3], "watchdog ok flag")

	// past the deadline the emitted flag flips to triggered
	frame, ok = d.Tick(start.Add(2 * time.Second))
	require.True(t, ok)
	assert.Equal(t, byte(0x00), frame.Data[3])
	assert.Equal(t, domain.WatchdogTimedOut, m.Status())
}

func TestDeviceBRejectsUnknownID(t *testing.T) {
	d, _, start := newTestDeviceB(t)

	f, err := canframe.New(true, false, domain.DeviceAStatusID, []byte{1})
	require.NoError(t, err)
	assert.ErrorIs(t, d.Receive(f, start), domain.ErrProtocolViolation)

	empty, err := canframe.New(false, false, domain.ControlFrameID, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, d.Receive(empty, start), domain.ErrProtocolViolation)
}
