package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/canlab/cansim/internal/domain"
	"github.com/canlab/cansim/internal/ports"
	"github.com/canlab/cansim/pkg/canframe"
)

// Seconds-of-minute partition for device A's operational register.
const (
	registerOneUpper = 20 // [0,20] -> 1
	registerTwoUpper = 40 // [21,40] -> 2, [41,59] -> 3
)

// DeviceA is a status-only producer. It emits one status frame per
// period; the register value depends on the virtual seconds-of-minute.
// It accepts no inbound frames.
type DeviceA struct {
	period time.Duration
	logger ports.Logger

	mu        sync.Mutex
	startedAt time.Time
	lastTick  time.Time
	rate      float64
}

// NewDeviceA creates device A with the given virtual emission period,
// anchored at the virtual instant now.
func NewDeviceA(period time.Duration, now time.Time, logger ports.Logger) *DeviceA {
	return &DeviceA{
		period:    period,
		logger:    logger,
		startedAt: now,
	}
}

// Name implements ports.Device.
func (d *DeviceA) Name() string { return "device_a" }

// StatusPeriod implements ports.Device.
func (d *DeviceA) StatusPeriod() time.Duration { return d.period }

// OperationalRegister maps virtual seconds-of-minute to the register
// value: [0,20] -> 1, [21,40] -> 2, [41,59] -> 3.
func OperationalRegister(now time.Time) int {
	s := now.Second()
	switch {
	case s <= registerOneUpper:
		return 1
	case s <= registerTwoUpper:
		return 2
	default:
		return 3
	}
}

// Tick emits the status frame for the virtual instant now.
//
// Layout: byte 0 operational register, bytes 1-4 uptime in whole virtual
// seconds, big-endian.
func (d *DeviceA) Tick(now time.Time) (canframe.Frame, bool) {
	d.mu.Lock()
	uptime := uint32(now.Sub(d.startedAt) / time.Second)
	d.observeTick(now)
	d.mu.Unlock()

	register := OperationalRegister(now)
	frame, err := canframe.New(true, false, domain.DeviceAStatusID, []byte{
		byte(register),
		byte(uptime >> 24),
		byte(uptime >> 16),
		byte(uptime >> 8),
		byte(uptime),
	})
	if err != nil {
		// Unreachable with the fixed layout above.
		d.logger.Error("device A frame build failed", ports.Err(err))
		return canframe.Frame{}, false
	}
	return frame, true
}

// observeTick folds the instantaneous emission rate into an EWMA.
// Caller holds mu.
func (d *DeviceA) observeTick(now time.Time) {
	if !d.lastTick.IsZero() {
		if dt := now.Sub(d.lastTick).Seconds(); dt > 0 {
			const alpha = 0.2
			d.rate = alpha*(1/dt) + (1-alpha)*d.rate
		}
	}
	d.lastTick = now
}

// Receive rejects every inbound frame: device A takes no commands.
func (d *DeviceA) Receive(frame canframe.Frame, now time.Time) error {
	d.logger.Warn("device A received unexpected frame",
		ports.Uint32("can_id", frame.ID))
	return fmt.Errorf("%w: device A accepts no inbound frames (id 0x%X)",
		domain.ErrProtocolViolation, frame.ID)
}

// State returns device A's reported status at the virtual instant now.
func (d *DeviceA) State(now time.Time) domain.DeviceAState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return domain.DeviceAState{
		Register:  OperationalRegister(now),
		FrameRate: d.rate,
		Uptime:    now.Sub(d.startedAt),
	}
}
