package domain

// CAN identifiers used on the gateway link.
const (
	// DeviceAStatusID carries device A's periodic status (extended frame).
	DeviceAStatusID uint32 = 0x18FF0001

	// DeviceBStatusID carries device B's periodic status (extended frame).
	DeviceBStatusID uint32 = 0x18FF0002

	// WatchdogFrameID carries a watchdog reset command (standard frame).
	WatchdogFrameID uint32 = 0x100

	// ControlFrameID carries a control-set command (standard frame).
	ControlFrameID uint32 = 0x200
)

// WatchdogResetValue is the fixed payload byte of a watchdog-reset frame.
const WatchdogResetValue byte = 0x01

// MaxControlValue bounds the control register written by control-set.
const MaxControlValue = 255

// Watchdog auto-reset interval bounds, in whole virtual seconds.
// Zero disables automatic resets entirely (manual-only operation).
const (
	MinWatchdogInterval = 0
	MaxWatchdogInterval = 50
)
