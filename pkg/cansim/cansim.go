package cansim

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/canlab/cansim/internal/app"
	"github.com/canlab/cansim/internal/domain"
	"github.com/canlab/cansim/internal/ports"
	"github.com/canlab/cansim/pkg/log"
	"github.com/canlab/cansim/pkg/simclock"
)

// Snapshot is an atomic view of the whole simulator state.
type Snapshot = domain.Snapshot

// Sim is a CAN telemetry network simulator that can be embedded in
// other applications. Use New() to create an instance, then Start()
// to begin the periodic tasks.
type Sim struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	clock     *simclock.Clock
	pipeline  *app.Pipeline
	logger    log.Logger
	plugins   []Plugin

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a new Sim instance with the given configuration.
// The instance is created in StateStopped; call Start() to begin.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Sim, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	var emitter eventEmitterWrapper
	if o.handler != nil {
		emitter = eventEmitterWrapper{handler: o.handler}
	}
	lifecycle := app.NewLifecycle(logger, &emitter)

	clock := simclock.New()
	if cfg.Scale != 1.0 {
		if err := clock.SetScale(cfg.Scale); err != nil {
			return nil, err
		}
	}

	var observer ports.StatsObserver = ports.NoopStatsObserver{}
	if o.observer != nil {
		observer = o.observer
	}
	if o.handler != nil {
		observer = &watchdogEventObserver{
			StatsObserver: observer,
			handler:       o.handler,
			clock:         clock,
		}
	}

	statusPeriod := cfg.statusPeriod()
	pipeline := app.NewPipeline(app.PipelineConfig{
		DeviceAPeriod:        statusPeriod,
		DeviceBPeriod:        statusPeriod,
		ModuleCPeriod:        cfg.CalculatorPeriod,
		WatchdogDeadline:     cfg.WatchdogDeadline,
		WatchdogAutoInterval: cfg.WatchdogAutoInterval,
	}, clock, logger, observer, o.sinks...)

	return &Sim{
		config:    cfg,
		opts:      o,
		lifecycle: lifecycle,
		clock:     clock,
		pipeline:  pipeline,
		logger:    logger,
		plugins:   o.plugins,
	}, nil
}

// Start begins the periodic simulation tasks in the background.
// Returns immediately after the tasks are scheduled.
// Returns an error if already running or if startup fails.
// The provided context bounds the lifetime of the simulation.
func (s *Sim) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		ConfigPath: s.config.ConfigPath,
		Controls:   s,
		Logger:     s.logger,
	}
	for _, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			_ = s.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		s.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	if err := s.pipeline.Start(runCtx); err != nil {
		cancel()
		_ = s.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		return err
	}

	// The watcher goroutine drains the periodic tasks when either the
	// context ends or the clock is halted.
	s.lifecycle.AddWorker()
	go func() {
		defer s.lifecycle.WorkerDone()
		halted := false
		select {
		case <-runCtx.Done():
		case <-s.clock.Done():
			halted = true
		}
		if err := s.pipeline.Stop(); err != nil && !errors.Is(err, domain.ErrNotRunning) {
			s.logger.Error("pipeline stop failed", log.Err(err))
		}
		if halted && runCtx.Err() == nil {
			_ = s.lifecycle.TransitionTo(app.StateStopping, "clock halted")
			_ = s.lifecycle.TransitionTo(app.StateStopped, "clock halted")
		}
	}()

	return s.lifecycle.TransitionTo(app.StateRunning, "tasks scheduled")
}

// Stop gracefully shuts down the simulation.
// Waits up to app.ShutdownTimeout before forcing shutdown.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (s *Sim) Stop() error {
	s.mu.Lock()

	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}

	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	err := s.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	shutdownCtx := context.Background()
	for i := len(s.plugins) - 1; i >= 0; i-- {
		p := s.plugins[i]
		if shutdownErr := p.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(shutdownErr))
		} else {
			s.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}

	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Sim) Status() State {
	return convertState(s.lifecycle.State())
}

// SetControlValue sends a control-set command to device B.
// The value must be in 0..255. Returns the virtual time at which the
// command was applied.
func (s *Sim) SetControlValue(value int) (time.Time, error) {
	return s.pipeline.SetControlValue(value)
}

// ResetWatchdog sends a manual watchdog-reset command to device B.
func (s *Sim) ResetWatchdog() (time.Time, error) {
	return s.pipeline.ResetWatchdog()
}

// SetWatchdogInterval configures automatic watchdog resets every
// seconds virtual seconds. The value must be in 0..50; zero disables
// automatic mode.
func (s *Sim) SetWatchdogInterval(seconds int) (time.Time, error) {
	return s.pipeline.SetWatchdogInterval(seconds)
}

// SetScale changes the simulation speed. Scale is real seconds per
// virtual second; values above 1 slow the simulation down.
func (s *Sim) SetScale(scale float64) (time.Time, error) {
	return s.pipeline.SetScale(scale)
}

// Freeze pins virtual time; devices stop emitting until Unfreeze.
func (s *Sim) Freeze() (time.Time, error) {
	return s.pipeline.Freeze()
}

// Unfreeze resumes virtual time exactly where it stopped.
func (s *Sim) Unfreeze() (time.Time, error) {
	return s.pipeline.Unfreeze()
}

// Halt permanently stops the virtual clock and every periodic task.
// Snapshot remains valid afterwards; all other commands return
// ErrHalted.
func (s *Sim) Halt() (time.Time, error) {
	return s.pipeline.Halt()
}

// InjectFrame feeds one externally produced 13-byte wire frame into
// the simulated bus. The frame is counted in the statistics and
// dispatched to its target device by CAN ID. Malformed frames and
// protocol violations are reported to the caller but never stop the
// simulation.
func (s *Sim) InjectFrame(raw []byte) (time.Time, error) {
	return s.pipeline.InjectFrame(raw)
}

// Snapshot returns an atomic view across every simulator component.
func (s *Sim) Snapshot() Snapshot {
	return s.pipeline.Snapshot()
}

// Now returns the current virtual time.
func (s *Sim) Now() time.Time {
	return s.clock.Now()
}

var _ Controls = (*Sim)(nil)

// watchdogEventObserver detects ok-to-timed-out transitions and
// forwards them to the event handler, on top of the wrapped observer.
type watchdogEventObserver struct {
	ports.StatsObserver
	handler EventHandler
	clock   *simclock.Clock

	mu   sync.Mutex
	last domain.WatchdogStatus
}

func (w *watchdogEventObserver) ObserveWatchdog(status domain.WatchdogStatus) {
	w.StatsObserver.ObserveWatchdog(status)

	w.mu.Lock()
	fired := status == domain.WatchdogTimedOut && w.last != domain.WatchdogTimedOut
	w.last = status
	w.mu.Unlock()

	if fired {
		w.handler.OnWatchdogTimeout(WatchdogTimeoutEvent{At: w.clock.Now()})
	}
}
