package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	FrameRate            float64 `toml:"frame_rate"`
	ModuleCPeriod        string  `toml:"calculator_period"`
	WatchdogDeadline     string  `toml:"watchdog_deadline"`
	WatchdogAutoInterval int     `toml:"watchdog_auto_interval"`
	Scale                float64 `toml:"scale"`
	RunDuration          string  `toml:"run_duration"`
	MetricsAddr          string  `toml:"metrics_addr"`
	WatchConfig          *bool   `toml:"watch_config"`
	LogLevel             string  `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.cansim/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".cansim", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setFloat("frame-rate", fc.FrameRate, &cfg.FrameRate)
	s.setFloat("scale", fc.Scale, &cfg.Scale)

	if err := s.setDuration("calculator-period", fc.ModuleCPeriod, &cfg.ModuleCPeriod); err != nil {
		return err
	}
	if err := s.setDuration("watchdog-deadline", fc.WatchdogDeadline, &cfg.WatchdogDeadline); err != nil {
		return err
	}
	if err := s.setDuration("run-duration", fc.RunDuration, &cfg.RunDuration); err != nil {
		return err
	}

	s.setInt("watchdog-auto-interval", fc.WatchdogAutoInterval, &cfg.WatchdogAutoInterval)

	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
