package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/canlab/cansim/internal/domain"
	"github.com/canlab/cansim/internal/ports"
	"github.com/canlab/cansim/pkg/canframe"
)

// DeviceB is a stateful producer/consumer. It holds a control register
// (written only by control-set frames) and a watchdog register (written
// only by watchdog-reset frames) and emits a periodic status frame
// reflecting both plus the monitor's derived ok/triggered flag.
type DeviceB struct {
	period  time.Duration
	monitor *Monitor
	logger  ports.Logger

	mu               sync.Mutex
	statusRegister   byte
	controlValue     int
	watchdogRegister byte
	lastCommandAt    time.Time
}

// NewDeviceB creates device B with the given virtual emission period.
// The monitor stays owned by the caller; device B only feeds resets into
// it and reads its status for the emitted ok flag.
func NewDeviceB(period time.Duration, monitor *Monitor, logger ports.Logger) *DeviceB {
	return &DeviceB{
		period:  period,
		monitor: monitor,
		logger:  logger,
	}
}

// Name implements ports.Device.
func (d *DeviceB) Name() string { return "device_b" }

// StatusPeriod implements ports.Device.
func (d *DeviceB) StatusPeriod() time.Duration { return d.period }

// Tick emits the status frame for the virtual instant now.
//
// Layout: byte 0 status register, byte 1 control value, byte 2 watchdog
// register, byte 3 watchdog flag (0x01 ok, 0x00 triggered).
func (d *DeviceB) Tick(now time.Time) (canframe.Frame, bool) {
	okFlag := byte(0x00)
	if d.monitor.Check(now) == domain.WatchdogOK {
		okFlag = 0x01
	}

	d.mu.Lock()
	data := []byte{
		d.statusRegister,
		byte(d.controlValue),
		d.watchdogRegister,
		okFlag,
	}
	d.mu.Unlock()

	frame, err := canframe.New(true, false, domain.DeviceBStatusID, data)
	if err != nil {
		d.logger.Error("device B frame build failed", ports.Err(err))
		return canframe.Frame{}, false
	}
	return frame, true
}

// Receive applies an inbound command frame, dispatched by CAN ID.
// Commands are applied in receipt order; the next status frame emitted
// after an accepted command always reflects it.
func (d *DeviceB) Receive(frame canframe.Frame, now time.Time) error {
	switch frame.ID {
	case domain.ControlFrameID:
		if frame.Length < 1 {
			return fmt.Errorf("%w: empty control frame", domain.ErrProtocolViolation)
		}
		return d.SetControl(int(frame.Data[0]), now)

	case domain.WatchdogFrameID:
		if frame.Length < 1 {
			return fmt.Errorf("%w: empty watchdog frame", domain.ErrProtocolViolation)
		}
		d.mu.Lock()
		d.watchdogRegister = frame.Data[0]
		d.mu.Unlock()
		d.monitor.Reset(now)
		d.logger.Debug("watchdog reset received", ports.Time("at", now))
		return nil

	default:
		return fmt.Errorf("%w: device B does not accept id 0x%X",
			domain.ErrProtocolViolation, frame.ID)
	}
}

// SetControl atomically replaces the control register and stamps the
// command time. Out-of-range values fail with
// domain.ErrInvalidControlValue and leave state unchanged.
func (d *DeviceB) SetControl(value int, now time.Time) error {
	if value < 0 || value > domain.MaxControlValue {
		return domain.ErrInvalidControlValue
	}
	d.mu.Lock()
	d.controlValue = value
	d.lastCommandAt = now
	d.mu.Unlock()
	d.logger.Debug("control value updated", ports.Int("value", value))
	return nil
}

// State returns device B's registers as a value copy.
func (d *DeviceB) State() domain.DeviceBState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return domain.DeviceBState{
		ControlValue:     d.controlValue,
		WatchdogRegister: d.watchdogRegister,
		LastCommandAt:    d.lastCommandAt,
	}
}
