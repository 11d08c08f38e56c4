// Package configwatcher provides live configuration reloading for the
// simulator. When enabled, it watches the TOML config file and applies
// changes to the time scale and the watchdog auto-reset interval to
// the running instance.
package configwatcher

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/canlab/cansim/internal/cliconfig"
	"github.com/canlab/cansim/pkg/cansim"
	"github.com/canlab/cansim/pkg/log"
)

// Plugin implements config file watching. Only the fields that are
// safe to change at runtime are applied: scale and
// watchdog_auto_interval. Everything else requires a restart.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	debounceDelay time.Duration

	// Runtime state
	path     string
	controls cansim.Controls
	logger   cansim.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer

	// Last applied values; reloads only act on changes.
	prevScale    float64
	prevInterval int
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before
	// reloading. Editors often produce several events per save.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		prevScale:     math.NaN(),
		prevInterval:  -1,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize seeds the last-seen values from the current file and
// starts the watcher loop.
func (p *Plugin) Initialize(ctx context.Context, cfg cansim.PluginConfig) error {
	p.mu.Lock()
	p.path = cfg.ConfigPath
	p.controls = cfg.Controls
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.path == "" || p.controls == nil {
		p.logger.Warn("config watcher disabled: no config path set")
		return nil
	}

	// The instance was just configured from this file; remember its
	// values so the first reload only applies actual edits.
	if fc, err := cliconfig.LoadFileConfig(p.path); err == nil {
		p.mu.Lock()
		p.prevScale = fc.Scale
		p.prevInterval = fc.WatchdogAutoInterval
		p.mu.Unlock()
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher initialized",
		log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// watchLoop watches the config file's directory for changes. Watching
// the directory instead of the file survives the rename-and-replace
// pattern most editors use.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("config watcher: failed to create watcher")
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		p.logger.Error("config watcher: failed to watch directory")
		return
	}

	base := filepath.Base(p.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(p.debounceDelay)

		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error")
		}
	}
}

func (p *Plugin) debounceReload(delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(delay, p.reload)
}

// reload reads the file and applies the runtime-adjustable fields that
// changed since the last apply.
func (p *Plugin) reload() {
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Error("config watcher: reload failed",
			log.Err(err))
		return
	}

	p.mu.Lock()
	applyScale := fc.Scale > 0 && fc.Scale != p.prevScale
	applyInterval := fc.WatchdogAutoInterval != p.prevInterval
	p.mu.Unlock()

	if applyScale {
		if _, err := p.controls.SetScale(fc.Scale); err != nil {
			p.logger.Error("config watcher: scale update rejected",
				log.Err(err))
		} else {
			p.mu.Lock()
			p.prevScale = fc.Scale
			p.mu.Unlock()
			p.logger.Info("config watcher: scale updated",
				log.Float64("scale", fc.Scale))
		}
	}

	if applyInterval {
		if _, err := p.controls.SetWatchdogInterval(fc.WatchdogAutoInterval); err != nil {
			p.logger.Error("config watcher: watchdog interval update rejected",
				log.Err(err))
		} else {
			p.mu.Lock()
			p.prevInterval = fc.WatchdogAutoInterval
			p.mu.Unlock()
			p.logger.Info("config watcher: watchdog interval updated",
				log.Int("seconds", fc.WatchdogAutoInterval))
		}
	}
}

// Ensure Plugin implements cansim.Plugin.
var _ cansim.Plugin = (*Plugin)(nil)
