// Package cansim provides an embeddable CAN telemetry network simulator.
//
// The simulator runs two virtual devices exchanging 13-byte wire-format
// frames over an in-process bus, a watchdog monitor, and a periodic
// calculator, all driven by a scalable virtual clock. It can be used as
// a standalone CLI application or embedded as a library in other Go
// programs.
//
// # Basic Usage
//
// To embed the simulator in your application:
//
//	sim, err := cansim.New(cansim.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := sim.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... interact: sim.SetControlValue(42), sim.SetScale(0.5), ...
//
//	if err := sim.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Configuration
//
// Create a [Config] or start from [DefaultConfig]. All fields have
// sensible defaults set via [Config.SetDefaults].
//
// # Event Handling
//
// To receive notifications about lifecycle transitions and watchdog
// timeouts, implement [EventHandler] and pass it via [WithEventHandler]:
//
//	handler := &myEventHandler{}
//	sim, err := cansim.New(cfg, cansim.WithEventHandler(handler))
//
// Events are called synchronously from simulator goroutines.
// Implementations should return quickly.
//
// # Frame Taps
//
// Every frame observed on the bus can be mirrored to subscribers in
// wire format via [WithFrameSink]. Sinks must not block.
//
// # Lifecycle States
//
// A Sim instance can be in one of five states: [StateStopped],
// [StateStarting], [StateRunning], [StateStopping], or [StateCrashed].
// Use [Sim.Status] to query the current state.
//
// # Plugins
//
// The simulator supports optional plugins for extended functionality:
//
//	import "github.com/canlab/cansim/plugins/configwatcher"
//
//	sim, err := cansim.New(cfg,
//	    configwatcher.WithDefaultConfigWatcher(),
//	)
package cansim
