package simclock

import (
	"errors"
	"sync"
	"time"
)

// ErrInvalidScale is returned by SetScale for non-positive factors.
var ErrInvalidScale = errors.New("simclock: scale must be positive")

// ErrHalted is returned by mutating operations after Halt.
var ErrHalted = errors.New("simclock: clock is halted")

// State is a point-in-time copy of the clock's control settings.
type State struct {
	// Scale maps one unit of virtual time to Scale units of real time.
	Scale float64

	// Frozen reports whether virtual time is currently pinned.
	Frozen bool

	// HaltedAt is the virtual instant of Halt, zero if still running.
	HaltedAt time.Time
}

// Clock converts real elapsed time into scaled virtual time.
//
// The mapping is anchored at a real origin instant (mark) plus an
// accumulated virtual offset. Every transition that changes the mapping
// (scale change, freeze, unfreeze, halt) flushes the virtual time accrued
// since the mark into the offset and re-anchors the mark.
type Clock struct {
	mu sync.Mutex

	epoch  time.Time     // virtual wall-clock start
	mark   time.Time     // real instant the current mapping was anchored
	offset time.Duration // virtual time accrued before mark

	scale    float64
	frozen   bool
	halted   bool
	haltedAt time.Time

	done chan struct{}

	// nowFn is replaceable in tests.
	nowFn func() time.Time
}

// New returns a running clock at scale 1 whose virtual epoch is the
// current wall-clock time.
func New() *Clock {
	now := time.Now()
	return &Clock{
		epoch: now,
		mark:  now,
		scale: 1,
		done:  make(chan struct{}),
		nowFn: time.Now,
	}
}

// accrued returns virtual time gathered since the mark. Caller holds mu.
func (c *Clock) accrued() time.Duration {
	if c.frozen || c.halted {
		return 0
	}
	real := c.nowFn().Sub(c.mark)
	return time.Duration(float64(real) / c.scale)
}

// flush folds accrued virtual time into the offset and re-anchors the
// mark. Caller holds mu.
func (c *Clock) flush() {
	c.offset += c.accrued()
	c.mark = c.nowFn()
}

// Now returns the current virtual timestamp. While frozen or after halt
// the returned value stops advancing.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch.Add(c.offset + c.accrued())
}

// ElapsedSince returns the virtual duration elapsed since t.
func (c *Clock) ElapsedSince(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// SetScale changes the real-to-virtual mapping. Values greater than one
// slow the simulation down, values below one speed it up.
func (c *Clock) SetScale(s float64) error {
	if s <= 0 {
		return ErrInvalidScale
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.halted {
		return ErrHalted
	}
	c.flush()
	c.scale = s
	return nil
}

// Scale returns the current scale factor.
func (c *Clock) Scale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

// Freeze pins virtual time at its current value. Freezing an already
// frozen clock is a no-op.
func (c *Clock) Freeze() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.halted {
		return ErrHalted
	}
	if c.frozen {
		return nil
	}
	c.flush()
	c.frozen = true
	return nil
}

// Unfreeze resumes virtual time exactly where it left off.
func (c *Clock) Unfreeze() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.halted {
		return ErrHalted
	}
	if !c.frozen {
		return nil
	}
	c.mark = c.nowFn()
	c.frozen = false
	return nil
}

// Frozen reports whether the clock is currently frozen.
func (c *Clock) Frozen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frozen
}

// Halt permanently stops the clock. Once halted, Now stops advancing,
// every mutating operation fails with ErrHalted, and Done is closed so
// periodic tasks stop scheduling further ticks.
func (c *Clock) Halt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.halted {
		return
	}
	c.flush()
	c.halted = true
	c.haltedAt = c.epoch.Add(c.offset)
	close(c.done)
}

// Halted reports whether Halt has been called.
func (c *Clock) Halted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.halted
}

// Done is closed when the clock halts.
func (c *Clock) Done() <-chan struct{} {
	return c.done
}

// RealInterval converts a virtual duration into the real duration a timer
// must wait under the current scale.
func (c *Clock) RealInterval(virtual time.Duration) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Duration(float64(virtual) * c.scale)
}

// State returns a copy of the clock's control settings.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Scale:    c.scale,
		Frozen:   c.frozen,
		HaltedAt: c.haltedAt,
	}
}
