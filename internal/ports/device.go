package ports

import (
	"time"

	"github.com/canlab/cansim/pkg/canframe"
)

// Device is the capability interface implemented by every emulated field
// device. The pipeline schedules Tick on the device's cadence and routes
// inbound command frames through Receive; it dispatches over this
// interface, never over concrete device types.
type Device interface {
	// Name identifies the device in logs and statistics.
	Name() string

	// StatusPeriod is the device's emission period in virtual time.
	StatusPeriod() time.Duration

	// Tick advances the device to the given virtual instant and returns
	// its status frame. ok is false when the device has nothing to emit
	// on this tick.
	Tick(now time.Time) (frame canframe.Frame, ok bool)

	// Receive applies an inbound frame to the device. A frame the
	// device does not accept fails with domain.ErrProtocolViolation;
	// invalid payloads fail with the matching domain error. State is
	// unchanged on failure.
	Receive(frame canframe.Frame, now time.Time) error
}
