package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (CANSIM_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setFloatFromString("frame-rate", os.Getenv("CANSIM_FRAME_RATE"), &cfg.FrameRate); err != nil {
		return err
	}
	if err := s.setFloatFromString("scale", os.Getenv("CANSIM_SCALE"), &cfg.Scale); err != nil {
		return err
	}

	if err := s.setDuration("calculator-period", os.Getenv("CANSIM_CALCULATOR_PERIOD"), &cfg.ModuleCPeriod); err != nil {
		return err
	}
	if err := s.setDuration("watchdog-deadline", os.Getenv("CANSIM_WATCHDOG_DEADLINE"), &cfg.WatchdogDeadline); err != nil {
		return err
	}
	if err := s.setDuration("run-duration", os.Getenv("CANSIM_RUN_DURATION"), &cfg.RunDuration); err != nil {
		return err
	}

	if err := s.setIntFromString("watchdog-auto-interval", os.Getenv("CANSIM_WATCHDOG_AUTO_INTERVAL"), &cfg.WatchdogAutoInterval); err != nil {
		return err
	}

	s.setString("metrics-addr", os.Getenv("CANSIM_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", os.Getenv("CANSIM_LOG_LEVEL"), &cfg.LogLevel)

	s.setBoolFromString("watch-config", os.Getenv("CANSIM_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
