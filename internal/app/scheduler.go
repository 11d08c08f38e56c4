package app

import (
	"context"
	"time"

	"github.com/canlab/cansim/internal/ports"
)

// minRealInterval floors the timer period so a very small scale factor
// cannot turn a task into a busy loop.
const minRealInterval = time.Millisecond

// runPeriodic drives fn on a virtual-time cadence until the context is
// cancelled or the clock halts. The period callback is re-evaluated on
// every tick so scale changes (and live period changes) rescale the task
// without restarting it. While the clock is frozen the task keeps its
// timer but skips fn entirely, so frozen time produces no emissions.
func (p *Pipeline) runPeriodic(ctx context.Context, name string, period func() time.Duration, fn func(now time.Time)) {
	defer p.wg.Done()
	defer p.logger.Debug("periodic task stopped", ports.Str("task", name))

	timer := time.NewTimer(p.realInterval(period()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.clock.Done():
			return
		case <-timer.C:
			// Halt must be prompt: re-check before any emission.
			if p.clock.Halted() {
				return
			}
			if !p.clock.Frozen() {
				fn(p.clock.Now())
			}
			timer.Reset(p.realInterval(period()))
		}
	}
}

func (p *Pipeline) realInterval(virtual time.Duration) time.Duration {
	real := p.clock.RealInterval(virtual)
	if real < minRealInterval {
		real = minRealInterval
	}
	return real
}
