// Package metrics exports the pipeline statistics to Prometheus. It
// implements ports.StatsObserver; the core never depends on the metrics
// backend directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/canlab/cansim/internal/domain"
)

// Observer translates pipeline observations into Prometheus metrics.
type Observer struct {
	framesTotal    *prometheus.CounterVec
	droppedTotal   prometheus.Counter
	frameRate      *prometheus.GaugeVec
	watchdogStatus prometheus.Gauge
	simScale       prometheus.Gauge
}

// NewObserver creates the metric set. Register attaches it to a
// registry; construction alone does not register anything.
func NewObserver() *Observer {
	return &Observer{
		framesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cansim",
				Subsystem: "pipeline",
				Name:      "frames_total",
				Help:      "Total number of frames observed per stream",
			},
			[]string{"stream"},
		),
		droppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cansim",
				Subsystem: "pipeline",
				Name:      "dropped_frames_total",
				Help:      "Total number of malformed frames dropped",
			},
		),
		frameRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "cansim",
				Subsystem: "pipeline",
				Name:      "frame_rate",
				Help:      "Rolling frame rate estimate per stream in frames per virtual second",
			},
			[]string{"stream"},
		),
		watchdogStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "cansim",
				Subsystem: "watchdog",
				Name:      "status",
				Help:      "Watchdog status (0=ok, 1=timed out)",
			},
		),
		simScale: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "cansim",
				Subsystem: "clock",
				Name:      "scale",
				Help:      "Simulation scale factor (real seconds per virtual second)",
			},
		),
	}
}

// Register registers all metrics with the given registerer.
func (o *Observer) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		o.framesTotal,
		o.droppedTotal,
		o.frameRate,
		o.watchdogStatus,
		o.simScale,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveFrame implements ports.StatsObserver.
func (o *Observer) ObserveFrame(stream domain.Stream) {
	o.framesTotal.WithLabelValues(string(stream)).Inc()
}

// ObserveDropped implements ports.StatsObserver.
func (o *Observer) ObserveDropped() {
	o.droppedTotal.Inc()
}

// ObserveRate implements ports.StatsObserver.
func (o *Observer) ObserveRate(stream domain.Stream, perSecond float64) {
	o.frameRate.WithLabelValues(string(stream)).Set(perSecond)
}

// ObserveWatchdog implements ports.StatsObserver.
func (o *Observer) ObserveWatchdog(status domain.WatchdogStatus) {
	if status == domain.WatchdogTimedOut {
		o.watchdogStatus.Set(1)
	} else {
		o.watchdogStatus.Set(0)
	}
}

// ObserveScale implements ports.StatsObserver.
func (o *Observer) ObserveScale(scale float64) {
	o.simScale.Set(scale)
}
