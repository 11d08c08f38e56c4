// Package cliconfig holds the CLI-facing configuration for cansim and
// the layered loading logic: defaults, then config file, then
// environment, then flags. Later layers win; a value is only applied
// when the corresponding flag was not set explicitly.
package cliconfig

import (
	"fmt"
	"strconv"
	"time"
)

// Config holds CLI configuration for cansim.
type Config struct {
	// FrameRate is the number of status frames each device emits per
	// virtual second.
	FrameRate float64

	// ModuleCPeriod is the virtual interval between calculator passes.
	ModuleCPeriod time.Duration

	// WatchdogDeadline is the virtual time after which a missed reset
	// marks the watchdog as timed out.
	WatchdogDeadline time.Duration

	// WatchdogAutoInterval enables periodic automatic watchdog resets
	// every N virtual seconds. Zero disables them.
	WatchdogAutoInterval int

	// Scale is the initial time scale: real seconds per virtual second.
	Scale float64

	// RunDuration stops the simulation after this much real time.
	// Zero means run until interrupted.
	RunDuration time.Duration

	// MetricsAddr is the listen address for the Prometheus endpoint.
	// Empty disables the HTTP listener.
	MetricsAddr string

	// ConfigPath is the TOML config file to load. Empty falls back to
	// the default path when that file exists.
	ConfigPath string

	// WatchConfig enables live reloading of the config file.
	WatchConfig bool

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		FrameRate:        10,
		ModuleCPeriod:    100 * time.Millisecond,
		WatchdogDeadline: 500 * time.Millisecond,
		Scale:            1.0,
		LogLevel:         "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive")
	}
	if c.ModuleCPeriod <= 0 {
		return fmt.Errorf("calculator period must be positive")
	}
	if c.WatchdogDeadline <= 0 {
		return fmt.Errorf("watchdog deadline must be positive")
	}
	if c.WatchdogAutoInterval < 0 || c.WatchdogAutoInterval > 50 {
		return fmt.Errorf("watchdog auto interval must be in 0..50")
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive")
	}
	if c.RunDuration < 0 {
		return fmt.Errorf("run duration must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
