package domain

import "errors"

// Domain errors returned by the public API; check with errors.Is.
var (
	// ErrInvalidControlValue is returned when a control-set command
	// carries a value outside 0..255.
	ErrInvalidControlValue = errors.New("cansim: control value out of range 0..255")

	// ErrInvalidInterval is returned when a watchdog auto-reset interval
	// is outside 0..50 seconds.
	ErrInvalidInterval = errors.New("cansim: watchdog interval out of range 0..50s")

	// ErrProtocolViolation is returned when a frame reaches a device
	// that does not accept it. It is logged and counted, never fatal.
	ErrProtocolViolation = errors.New("cansim: protocol violation")

	// ErrAlreadyRunning is returned when Start is called on a running
	// instance.
	ErrAlreadyRunning = errors.New("cansim: already running")

	// ErrNotRunning is returned when Stop is called on a stopped
	// instance.
	ErrNotRunning = errors.New("cansim: not running")

	// ErrHalted is returned by commands after the simulation clock has
	// been halted.
	ErrHalted = errors.New("cansim: simulation halted")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("cansim: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("cansim: invalid configuration")
)
