package ports

import "github.com/canlab/cansim/internal/domain"

// StatsObserver is the metrics hook fed by the pipeline. Implementations
// export the observations to a metrics backend; the noop observer is
// used when metrics are disabled.
type StatsObserver interface {
	// ObserveFrame records one frame on the named stream.
	ObserveFrame(stream domain.Stream)

	// ObserveDropped records one malformed frame.
	ObserveDropped()

	// ObserveRate records the current rate estimate of a stream.
	ObserveRate(stream domain.Stream, perSecond float64)

	// ObserveWatchdog records the watchdog status.
	ObserveWatchdog(status domain.WatchdogStatus)

	// ObserveScale records the simulation scale factor.
	ObserveScale(scale float64)
}

// NoopStatsObserver discards all observations.
type NoopStatsObserver struct{}

func (NoopStatsObserver) ObserveFrame(domain.Stream)               {}
func (NoopStatsObserver) ObserveDropped()                          {}
func (NoopStatsObserver) ObserveRate(domain.Stream, float64)       {}
func (NoopStatsObserver) ObserveWatchdog(domain.WatchdogStatus)    {}
func (NoopStatsObserver) ObserveScale(float64)                     {}
