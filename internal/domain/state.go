package domain

import (
	"time"

	"github.com/canlab/cansim/pkg/canframe"
	"github.com/canlab/cansim/pkg/simclock"
)

// DeviceAState is device A's reported status. It is derived entirely
// from virtual time, never persisted.
type DeviceAState struct {
	// Register is the operational value 1, 2 or 3 mapped from the
	// virtual seconds-of-minute.
	Register int

	// FrameRate is the measured emission rate in frames per virtual
	// second.
	FrameRate float64

	// Uptime is the virtual time elapsed since device start.
	Uptime time.Duration
}

// DeviceBState holds device B's two independently written registers.
type DeviceBState struct {
	// ControlValue is written only by the control-set command path.
	ControlValue int

	// WatchdogRegister is written only by the watchdog-reset path.
	WatchdogRegister byte

	// LastCommandAt is the virtual instant of the last accepted
	// control-set command, zero if none arrived yet.
	LastCommandAt time.Time
}

// WatchdogStatus enumerates the monitor's two states.
type WatchdogStatus int

const (
	WatchdogOK WatchdogStatus = iota
	WatchdogTimedOut
)

// String returns the reporting form used in status frames and logs.
func (s WatchdogStatus) String() string {
	if s == WatchdogTimedOut {
		return "triggered"
	}
	return "ok"
}

// WatchdogState is the deadline monitor's observable status.
type WatchdogState struct {
	// Status is OK until the virtual deadline is exceeded, then
	// TimedOut until the next reset.
	Status WatchdogStatus

	// LastResetAt is the virtual instant of the last reset.
	LastResetAt time.Time

	// AutoEnabled reports whether the automatic reset sender runs.
	AutoEnabled bool

	// AutoInterval is the automatic reset period (0 = disabled).
	AutoInterval time.Duration
}

// ModuleCResult is one complete calculation output. A result is always
// published whole; readers never see a partially updated value.
type ModuleCResult struct {
	DeviceAValue int
	DeviceBValue int
	Multiplier   int
	Result       int
	ComputedAt   time.Time
}

// Stream names the frame flows tracked by the pipeline statistics.
type Stream string

const (
	StreamDeviceA  Stream = "device_a"
	StreamDeviceB  Stream = "device_b"
	StreamControl  Stream = "control"
	StreamWatchdog Stream = "watchdog"
)

// StreamStats carries the monotonic counter and rolling rate estimate of
// a single frame stream.
type StreamStats struct {
	// Frames counts every frame observed on the stream since start.
	Frames uint64

	// Rate is an exponentially weighted estimate in frames per virtual
	// second.
	Rate float64
}

// Stats aggregates per-stream statistics plus the pipeline-wide drop
// counters. Only the pipeline mutates it.
type Stats struct {
	DeviceA  StreamStats
	DeviceB  StreamStats
	Control  StreamStats
	Watchdog StreamStats

	// TotalFrames counts every frame that traversed the pipeline,
	// including ones later dropped.
	TotalFrames uint64

	// DroppedFrames counts malformed frames rejected by the codec.
	DroppedFrames uint64

	// ProtocolViolations counts frames routed to a device that does not
	// accept them.
	ProtocolViolations uint64

	// LastFrameAt is the virtual instant of the last observed frame.
	LastFrameAt time.Time
}

// Snapshot is the one atomic cross-component view handed to readers.
// All fields are value copies; a Snapshot never shares memory with live
// simulation state.
type Snapshot struct {
	DeviceA  DeviceAState
	DeviceB  DeviceBState
	Watchdog WatchdogState
	ModuleC  ModuleCResult
	Stats    Stats
	Clock    simclock.State

	// LastFrames retains the most recent decoded frame per CAN ID.
	LastFrames map[uint32]canframe.Frame

	// TakenAt is the virtual instant the snapshot was assembled.
	TakenAt time.Time
}
