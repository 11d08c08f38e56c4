package configwatcher

import "github.com/canlab/cansim/pkg/cansim"

// WithConfigWatcher returns a cansim Option that enables config file
// watching. The plugin monitors the instance's config file and applies
// runtime-adjustable changes (scale, watchdog auto interval) to the
// running simulator.
//
// Usage:
//
//	sim, err := cansim.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) cansim.Option {
	plugin := New(cfg)
	return cansim.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a cansim Option that enables config
// watching with default settings (debounce 100ms).
//
// Usage:
//
//	sim, err := cansim.New(cfg, configwatcher.WithDefaultConfigWatcher())
func WithDefaultConfigWatcher() cansim.Option {
	return WithConfigWatcher(DefaultConfig())
}
