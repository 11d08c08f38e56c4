package cansim

import (
	"fmt"
	"time"

	"github.com/canlab/cansim/internal/domain"
)

// Config holds the configuration for a simulator instance.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// FrameRate is the number of status frames each device emits per
	// virtual second.
	FrameRate float64

	// CalculatorPeriod is the virtual interval between calculator
	// passes.
	CalculatorPeriod time.Duration

	// WatchdogDeadline is the virtual time after which a missed reset
	// marks the watchdog as timed out.
	WatchdogDeadline time.Duration

	// WatchdogAutoInterval enables periodic automatic watchdog resets
	// every N virtual seconds. Zero disables them. Valid range is
	// 0..50.
	WatchdogAutoInterval int

	// Scale is the initial time scale: real seconds per virtual
	// second. Values above 1 slow the simulation down, values below 1
	// speed it up.
	Scale float64

	// ConfigPath optionally points at the TOML file the instance was
	// configured from. Plugins that watch for live configuration
	// changes use it; the simulator itself never reads it.
	ConfigPath string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		FrameRate:        10,
		CalculatorPeriod: 100 * time.Millisecond,
		WatchdogDeadline: 500 * time.Millisecond,
		Scale:            1.0,
	}
}

// SetDefaults fills zero-valued fields with their defaults.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.FrameRate == 0 {
		c.FrameRate = d.FrameRate
	}
	if c.CalculatorPeriod == 0 {
		c.CalculatorPeriod = d.CalculatorPeriod
	}
	if c.WatchdogDeadline == 0 {
		c.WatchdogDeadline = d.WatchdogDeadline
	}
	if c.Scale == 0 {
		c.Scale = d.Scale
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive", domain.ErrInvalidConfig)
	}
	if c.CalculatorPeriod <= 0 {
		return fmt.Errorf("%w: calculator period must be positive", domain.ErrInvalidConfig)
	}
	if c.WatchdogDeadline <= 0 {
		return fmt.Errorf("%w: watchdog deadline must be positive", domain.ErrInvalidConfig)
	}
	if c.WatchdogAutoInterval < 0 || c.WatchdogAutoInterval > 50 {
		return fmt.Errorf("%w: watchdog auto interval must be in 0..50", domain.ErrInvalidConfig)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive", domain.ErrInvalidConfig)
	}
	return nil
}

// statusPeriod converts the frame rate into the virtual interval
// between device status frames.
func (c *Config) statusPeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.FrameRate)
}
