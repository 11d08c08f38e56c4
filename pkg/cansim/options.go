package cansim

import (
	"github.com/canlab/cansim/internal/ports"
	"github.com/canlab/cansim/pkg/canframe"
	"github.com/canlab/cansim/pkg/log"
)

// Logger is the interface for structured logging.
type Logger = log.Logger

// LogField represents a structured log field.
type LogField = log.Field

// FrameSink receives every frame observed on the bus. OnFrame is
// called synchronously from simulator goroutines and must not block.
type FrameSink = ports.FrameSink

// FrameSinkFunc adapts a plain function to a FrameSink.
type FrameSinkFunc = ports.FrameSinkFunc

// Frame is the decoded wire frame delivered to sinks.
type Frame = canframe.Frame

// Option configures optional behavior of a Sim instance.
type Option func(*options)

// options holds the optional configuration for a Sim instance.
type options struct {
	logger   log.Logger
	handler  EventHandler
	observer ports.StatsObserver
	sinks    []ports.FrameSink
	plugins  []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for simulator events.
// Events are called synchronously from simulator goroutines.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.handler = handler
	}
}

// WithStatsObserver sets an observer for per-stream statistics, for
// example the Prometheus adapter. If not provided, observations are
// discarded.
func WithStatsObserver(observer ports.StatsObserver) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithFrameSink subscribes a sink to every frame observed on the bus.
// Multiple sinks may be registered; they are notified in registration
// order.
func WithFrameSink(sink FrameSink) Option {
	return func(o *options) {
		o.sinks = append(o.sinks, sink)
	}
}

// WithPlugin registers a plugin to be initialized when the instance
// starts. Plugins are initialized in registration order and shut down
// in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
