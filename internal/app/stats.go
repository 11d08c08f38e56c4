package app

import (
	"time"

	"github.com/canlab/cansim/internal/domain"
)

// rateAlpha is the smoothing factor of the per-stream EWMA rate.
const rateAlpha = 0.2

// streamBook tracks one frame stream: monotonic count plus a rolling
// rate estimate in frames per virtual second.
type streamBook struct {
	frames uint64
	rate   float64
	lastAt time.Time
}

// observe records one frame at the virtual instant now.
func (s *streamBook) observe(now time.Time) {
	s.frames++
	if !s.lastAt.IsZero() {
		if dt := now.Sub(s.lastAt).Seconds(); dt > 0 {
			s.rate = rateAlpha*(1/dt) + (1-rateAlpha)*s.rate
		}
	}
	s.lastAt = now
}

func (s *streamBook) stats() domain.StreamStats {
	return domain.StreamStats{Frames: s.frames, Rate: s.rate}
}

// statsBook aggregates all stream counters. It is guarded by the
// pipeline's snapshot mutex; only the pipeline writes to it.
type statsBook struct {
	deviceA  streamBook
	deviceB  streamBook
	control  streamBook
	watchdog streamBook

	total       uint64
	dropped     uint64
	violations  uint64
	lastFrameAt time.Time
}

// stream returns the book for a stream name, nil for unknown streams.
func (b *statsBook) stream(s domain.Stream) *streamBook {
	switch s {
	case domain.StreamDeviceA:
		return &b.deviceA
	case domain.StreamDeviceB:
		return &b.deviceB
	case domain.StreamControl:
		return &b.control
	case domain.StreamWatchdog:
		return &b.watchdog
	}
	return nil
}

// snapshot copies the book into the exported stats value.
func (b *statsBook) snapshot() domain.Stats {
	return domain.Stats{
		DeviceA:            b.deviceA.stats(),
		DeviceB:            b.deviceB.stats(),
		Control:            b.control.stats(),
		Watchdog:           b.watchdog.stats(),
		TotalFrames:        b.total,
		DroppedFrames:      b.dropped,
		ProtocolViolations: b.violations,
		LastFrameAt:        b.lastFrameAt,
	}
}
