// Package modulec implements the deterministic calculation block that
// reacts to both field devices' latest reported values.
package modulec

import (
	"sync"
	"time"

	"github.com/canlab/cansim/internal/domain"
	"github.com/canlab/cansim/internal/ports"
)

// DefaultPeriod is the nominal calculation period in virtual time.
const DefaultPeriod = 100 * time.Millisecond

// Multiplier maps virtual seconds-of-minute to the calculation
// multiplier: [1,15] -> 1, [16,30] -> 10, [31,45] -> 100, and the
// wrap-through-zero window [46,59] plus second 0 -> 1000.
func Multiplier(now time.Time) int {
	s := now.Second()
	switch {
	case s == 0 || s >= 46:
		return 1000
	case s <= 15:
		return 1
	case s <= 30:
		return 10
	default:
		return 100
	}
}

// Inputs is the pair of device values a calculation consumes. ModuleC
// reads them from the pipeline's shared snapshot, never from the devices
// directly, and tolerates bounded staleness between the two.
type Inputs struct {
	DeviceAValue int
	DeviceBValue int
}

// Calculator recomputes the result every period. The previous result is
// retained until a new one is published whole; readers never observe a
// partial update.
type Calculator struct {
	period time.Duration
	logger ports.Logger

	mu     sync.Mutex
	result domain.ModuleCResult
}

// New creates a calculator with the given virtual period.
func New(period time.Duration, logger ports.Logger) *Calculator {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Calculator{
		period: period,
		logger: logger,
	}
}

// Period is the calculator's virtual scheduling period.
func (c *Calculator) Period() time.Duration { return c.period }

// Compute publishes the result for the virtual instant now:
// (deviceA + deviceB) * multiplier(seconds-of-minute).
func (c *Calculator) Compute(now time.Time, in Inputs) domain.ModuleCResult {
	m := Multiplier(now)
	result := domain.ModuleCResult{
		DeviceAValue: in.DeviceAValue,
		DeviceBValue: in.DeviceBValue,
		Multiplier:   m,
		Result:       (in.DeviceAValue + in.DeviceBValue) * m,
		ComputedAt:   now,
	}

	c.mu.Lock()
	c.result = result
	c.mu.Unlock()

	c.logger.Debug("module C computed",
		ports.Int("device_a", in.DeviceAValue),
		ports.Int("device_b", in.DeviceBValue),
		ports.Int("multiplier", m),
		ports.Int("result", result.Result))
	return result
}

// Result returns the most recently published calculation.
func (c *Calculator) Result() domain.ModuleCResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}
