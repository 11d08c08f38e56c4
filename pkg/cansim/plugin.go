package cansim

import (
	"context"
	"time"

	"github.com/canlab/cansim/pkg/log"
)

// Controls is the command surface plugins use to steer a running
// simulator. *Sim satisfies this interface.
type Controls interface {
	SetControlValue(value int) (time.Time, error)
	ResetWatchdog() (time.Time, error)
	SetWatchdogInterval(seconds int) (time.Time, error)
	SetScale(scale float64) (time.Time, error)
	Freeze() (time.Time, error)
	Unfreeze() (time.Time, error)
}

// PluginConfig is passed to plugins during initialization.
type PluginConfig struct {
	// ConfigPath is the TOML file the instance was configured from.
	// Empty when the instance was configured programmatically.
	ConfigPath string

	// Controls steers the running instance.
	Controls Controls

	// Logger is the instance logger.
	Logger log.Logger
}

// Plugin extends a Sim instance with optional functionality.
// Plugins are initialized in registration order when Start is called
// and shut down in reverse order during Stop.
type Plugin interface {
	// Name returns the plugin identifier used in log output.
	Name() string

	// Initialize sets the plugin up. The context is cancelled when the
	// instance stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown releases plugin resources.
	Shutdown(ctx context.Context) error
}
