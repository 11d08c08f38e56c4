package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/canlab/cansim/internal/device"
	"github.com/canlab/cansim/internal/domain"
	"github.com/canlab/cansim/internal/modulec"
	"github.com/canlab/cansim/internal/ports"
	"github.com/canlab/cansim/pkg/canframe"
	"github.com/canlab/cansim/pkg/simclock"
)

// watchdogCheckPeriod is the virtual cadence of the deadline evaluation
// and of the auto-reset sender's polling loop.
const watchdogCheckPeriod = 100 * time.Millisecond

// PipelineConfig carries the tuning of the orchestrated components.
// All periods are virtual durations.
type PipelineConfig struct {
	DeviceAPeriod    time.Duration
	DeviceBPeriod    time.Duration
	ModuleCPeriod    time.Duration
	WatchdogDeadline time.Duration

	// WatchdogAutoInterval is the initial auto-reset interval in whole
	// seconds (0 = manual-only).
	WatchdogAutoInterval int
}

// Pipeline wires the devices, the watchdog monitor and module C
// together. It owns the shared live-state snapshot and the per-stream
// statistics; every mutation of those goes through exactly one writer
// path inside this type.
type Pipeline struct {
	clock    *simclock.Clock
	deviceA  *device.DeviceA
	deviceB  *device.DeviceB
	monitor  *device.Monitor
	calc     *modulec.Calculator
	logger   ports.Logger
	observer ports.StatsObserver
	sinks    []ports.FrameSink

	// mu guards the cross-component snapshot state: stats, last frames
	// and the latest values module C consumes. One mutex for the whole
	// snapshot so readers never observe a torn view.
	mu         sync.Mutex
	stats      statsBook
	lastFrames map[uint32]canframe.Frame
	lastAValue int
	lastBValue int

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPipeline builds the orchestrator and its components against the
// given clock. Sinks receive every observed frame in wire format and
// must not block.
func NewPipeline(cfg PipelineConfig, clock *simclock.Clock, logger ports.Logger, observer ports.StatsObserver, sinks ...ports.FrameSink) *Pipeline {
	if observer == nil {
		observer = ports.NoopStatsObserver{}
	}
	now := clock.Now()
	monitor := device.NewMonitor(cfg.WatchdogDeadline, now, logger)
	if cfg.WatchdogAutoInterval > 0 {
		// Config validation happened upstream; an invalid value here
		// degrades to manual-only instead of failing construction.
		if err := monitor.SetAutoInterval(cfg.WatchdogAutoInterval); err != nil {
			logger.Warn("ignoring invalid watchdog auto interval",
				ports.Int("seconds", cfg.WatchdogAutoInterval))
		}
	}

	return &Pipeline{
		clock:      clock,
		deviceA:    device.NewDeviceA(cfg.DeviceAPeriod, now, logger),
		deviceB:    device.NewDeviceB(cfg.DeviceBPeriod, monitor, logger),
		monitor:    monitor,
		calc:       modulec.New(cfg.ModuleCPeriod, logger),
		logger:     logger,
		observer:   observer,
		sinks:      sinks,
		lastFrames: make(map[uint32]canframe.Frame),
	}
}

// Start launches the periodic tasks: both device producers, the
// watchdog deadline check, the auto-reset sender and module C. Every
// task's timer derives from the clock's scale factor, so one scale
// change uniformly rescales all cadences.
func (p *Pipeline) Start(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.running {
		return domain.ErrAlreadyRunning
	}
	if p.clock.Halted() {
		return domain.ErrHalted
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true

	p.observer.ObserveScale(p.clock.Scale())

	tasks := []struct {
		name   string
		period func() time.Duration
		fn     func(now time.Time)
	}{
		{"device_a", p.deviceA.StatusPeriod, p.tickProducer(p.deviceA)},
		{"device_b", p.deviceB.StatusPeriod, p.tickProducer(p.deviceB)},
		{"watchdog_check", constPeriod(watchdogCheckPeriod), p.checkWatchdog},
		{"watchdog_auto", constPeriod(watchdogCheckPeriod), p.autoResetTick()},
		{"module_c", p.calc.Period, p.computeModuleC},
	}
	for _, task := range tasks {
		p.wg.Add(1)
		go p.runPeriodic(ctx, task.name, task.period, task.fn)
	}

	p.logger.Info("pipeline started",
		ports.Duration("device_a_period", p.deviceA.StatusPeriod()),
		ports.Duration("device_b_period", p.deviceB.StatusPeriod()),
		ports.Duration("module_c_period", p.calc.Period()))
	return nil
}

// Stop cancels the periodic tasks and waits for them to exit.
func (p *Pipeline) Stop() error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if !p.running {
		return domain.ErrNotRunning
	}
	p.cancel()
	p.wg.Wait()
	p.running = false
	p.logger.Info("pipeline stopped")
	return nil
}

func constPeriod(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

// tickProducer adapts a device into a periodic task body: emit the
// status frame and route it through the shared frame handler.
func (p *Pipeline) tickProducer(dev ports.Device) func(now time.Time) {
	return func(now time.Time) {
		frame, ok := dev.Tick(now)
		if !ok {
			return
		}
		p.ingest(frame.Marshal(), now)
	}
}

// checkWatchdog evaluates the deadline and exports the status.
func (p *Pipeline) checkWatchdog(now time.Time) {
	p.observer.ObserveWatchdog(p.monitor.Check(now))
}

// autoResetTick returns the auto-reset sender body. It polls on the
// check cadence and injects a watchdog-reset frame whenever the
// configured interval elapsed, so interval changes apply live without
// restarting the task.
func (p *Pipeline) autoResetTick() func(now time.Time) {
	var lastReset time.Time
	return func(now time.Time) {
		interval := p.monitor.AutoInterval()
		if interval <= 0 {
			lastReset = now
			return
		}
		if lastReset.IsZero() {
			lastReset = now
			return
		}
		if now.Sub(lastReset) < interval {
			return
		}
		lastReset = now
		if err := p.injectWatchdogReset(now); err != nil {
			p.logger.Error("auto watchdog reset failed", ports.Err(err))
			return
		}
		p.logger.Debug("auto watchdog reset sent", ports.Time("at", now))
	}
}

// computeModuleC feeds the latest snapshot values into the calculator.
// It never blocks on a device tick; staleness between the two inputs is
// accepted.
func (p *Pipeline) computeModuleC(now time.Time) {
	p.mu.Lock()
	in := modulec.Inputs{DeviceAValue: p.lastAValue, DeviceBValue: p.lastBValue}
	p.mu.Unlock()
	p.calc.Compute(now, in)
}

// ingest routes one wire-format frame through the pipeline: validate
// via the codec, update the snapshot and statistics for its stream,
// then notify the subscribers. Malformed frames are counted and
// dropped, never propagated to the tick that produced them.
func (p *Pipeline) ingest(raw []byte, now time.Time) {
	frame, err := canframe.Unmarshal(raw)
	if err != nil {
		p.dropMalformed(err)
		return
	}
	p.ingestFrame(raw, frame, now)
}

func (p *Pipeline) dropMalformed(err error) {
	p.mu.Lock()
	p.stats.dropped++
	p.mu.Unlock()
	p.observer.ObserveDropped()
	p.logger.Warn("malformed frame dropped", ports.Err(err))
}

// ingestFrame updates the snapshot and statistics for an already
// decoded frame and notifies the subscribers.
func (p *Pipeline) ingestFrame(raw []byte, frame canframe.Frame, now time.Time) {
	stream, known := streamOf(frame.ID)

	p.mu.Lock()
	p.stats.total++
	p.stats.lastFrameAt = now
	if known {
		if book := p.stats.stream(stream); book != nil {
			book.observe(now)
		}
	}
	p.lastFrames[frame.ID] = frame

	switch frame.ID {
	case domain.DeviceAStatusID:
		if frame.Length > 0 {
			p.lastAValue = int(frame.Data[0])
		}
	case domain.DeviceBStatusID:
		if frame.Length > 1 {
			p.lastBValue = int(frame.Data[1])
		}
	}
	rates := map[domain.Stream]float64{
		domain.StreamDeviceA: p.stats.deviceA.rate,
		domain.StreamDeviceB: p.stats.deviceB.rate,
	}
	p.mu.Unlock()

	if known {
		p.observer.ObserveFrame(stream)
	}
	for s, r := range rates {
		p.observer.ObserveRate(s, r)
	}
	for _, sink := range p.sinks {
		sink.OnFrame(raw, frame)
	}
}

// streamOf classifies a CAN ID into its statistics stream.
func streamOf(id uint32) (domain.Stream, bool) {
	switch id {
	case domain.DeviceAStatusID:
		return domain.StreamDeviceA, true
	case domain.DeviceBStatusID:
		return domain.StreamDeviceB, true
	case domain.ControlFrameID:
		return domain.StreamControl, true
	case domain.WatchdogFrameID:
		return domain.StreamWatchdog, true
	}
	return "", false
}

// InjectFrame feeds one externally produced wire-format frame into the
// pipeline, as if it had arrived on the bus. The frame traverses the
// statistics path and is then dispatched to its target device by CAN
// ID. Malformed frames and protocol violations are counted, logged and
// reported to the caller; neither stops the simulation.
func (p *Pipeline) InjectFrame(raw []byte) (time.Time, error) {
	now := p.clock.Now()
	if p.clock.Halted() {
		return now, domain.ErrHalted
	}

	frame, err := canframe.Unmarshal(raw)
	if err != nil {
		p.dropMalformed(err)
		return now, err
	}
	p.ingestFrame(raw, frame, now)

	var target ports.Device
	switch frame.ID {
	case domain.DeviceAStatusID:
		target = p.deviceA
	default:
		target = p.deviceB
	}
	if err := target.Receive(frame, now); err != nil {
		if errors.Is(err, domain.ErrProtocolViolation) {
			p.mu.Lock()
			p.stats.violations++
			p.mu.Unlock()
			p.logger.Warn("protocol violation",
				ports.Uint32("id", frame.ID),
				ports.Str("device", target.Name()),
				ports.Err(err))
		}
		return now, err
	}
	return now, nil
}

// SetControlValue injects a control-set command for device B. The value
// is validated at this boundary; the encoded frame also traverses the
// statistics path like any other observed frame.
func (p *Pipeline) SetControlValue(value int) (time.Time, error) {
	now := p.clock.Now()
	if p.clock.Halted() {
		return now, domain.ErrHalted
	}
	if value < 0 || value > domain.MaxControlValue {
		return now, domain.ErrInvalidControlValue
	}

	frame, err := canframe.New(false, false, domain.ControlFrameID, []byte{byte(value)})
	if err != nil {
		return now, err
	}
	p.ingest(frame.Marshal(), now)
	if err := p.deviceB.Receive(frame, now); err != nil {
		return now, err
	}
	p.logger.Info("control value set", ports.Int("value", value))
	return now, nil
}

// ResetWatchdog injects a manual watchdog-reset command for device B.
func (p *Pipeline) ResetWatchdog() (time.Time, error) {
	now := p.clock.Now()
	if p.clock.Halted() {
		return now, domain.ErrHalted
	}
	if err := p.injectWatchdogReset(now); err != nil {
		return now, err
	}
	p.logger.Info("manual watchdog reset", ports.Time("at", now))
	return now, nil
}

func (p *Pipeline) injectWatchdogReset(now time.Time) error {
	frame, err := canframe.New(false, false, domain.WatchdogFrameID, []byte{domain.WatchdogResetValue})
	if err != nil {
		return err
	}
	p.ingest(frame.Marshal(), now)
	return p.deviceB.Receive(frame, now)
}

// SetWatchdogInterval configures the auto-reset period in whole
// seconds. Zero disables automatic mode.
func (p *Pipeline) SetWatchdogInterval(seconds int) (time.Time, error) {
	now := p.clock.Now()
	if p.clock.Halted() {
		return now, domain.ErrHalted
	}
	if err := p.monitor.SetAutoInterval(seconds); err != nil {
		return now, err
	}
	p.logger.Info("watchdog auto interval set", ports.Int("seconds", seconds))
	return now, nil
}

// SetScale changes the simulation speed. All periodic cadences pick the
// new factor up on their next tick.
func (p *Pipeline) SetScale(scale float64) (time.Time, error) {
	now := p.clock.Now()
	if err := p.clock.SetScale(scale); err != nil {
		return now, err
	}
	p.observer.ObserveScale(scale)
	p.logger.Info("simulation scale set", ports.Float64("scale", scale))
	return now, nil
}

// Freeze pins virtual time; producers stop emitting until Unfreeze.
func (p *Pipeline) Freeze() (time.Time, error) {
	now := p.clock.Now()
	if err := p.clock.Freeze(); err != nil {
		return now, err
	}
	p.logger.Info("simulation frozen")
	return now, nil
}

// Unfreeze resumes virtual time exactly where it stopped.
func (p *Pipeline) Unfreeze() (time.Time, error) {
	now := p.clock.Now()
	if err := p.clock.Unfreeze(); err != nil {
		return now, err
	}
	p.logger.Info("simulation unfrozen")
	return now, nil
}

// Halt permanently stops the clock and with it every periodic task.
// Reads (Snapshot) remain valid afterwards.
func (p *Pipeline) Halt() (time.Time, error) {
	p.clock.Halt()
	now := p.clock.Now()
	p.logger.Info("simulation halted", ports.Time("at", now))
	return now, nil
}

// Snapshot assembles one atomic view across every component. All
// returned values are copies; the map is rebuilt on each call.
func (p *Pipeline) Snapshot() domain.Snapshot {
	now := p.clock.Now()

	p.mu.Lock()
	stats := p.stats.snapshot()
	frames := make(map[uint32]canframe.Frame, len(p.lastFrames))
	for id, f := range p.lastFrames {
		frames[id] = f
	}
	p.mu.Unlock()

	return domain.Snapshot{
		DeviceA:    p.deviceA.State(now),
		DeviceB:    p.deviceB.State(),
		Watchdog:   p.monitor.State(),
		ModuleC:    p.calc.Result(),
		Stats:      stats,
		Clock:      p.clock.State(),
		LastFrames: frames,
		TakenAt:    now,
	}
}

// Running reports whether the periodic tasks are scheduled.
func (p *Pipeline) Running() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.running
}

// IsHaltErr reports whether err is the terminal halt error.
func IsHaltErr(err error) bool {
	return errors.Is(err, domain.ErrHalted) || errors.Is(err, simclock.ErrHalted)
}
