package modulec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/canlab/cansim/pkg/log"
)

func secondOfMinute(s int) time.Time {
	return time.Date(2025, 6, 1, 9, 15, s, 0, time.UTC)
}

func TestMultiplierPartition(t *testing.T) {
	for s := 0; s < 60; s++ {
		var want int
		switch {
		case s == 0 || s >= 46:
			want = 1000
		case s <= 15:
			want = 1
		case s <= 30:
			want = 10
		default:
			want = 100
		}
		assert.Equal(t, want, Multiplier(secondOfMinute(s)), "second %d", s)
	}
}

func TestMultiplierWrapsThroughZero(t *testing.T) {
	// the [46,0] window spans the minute boundary
	assert.Equal(t, 1000, Multiplier(secondOfMinute(46)))
	assert.Equal(t, 1000, Multiplier(secondOfMinute(59)))
	assert.Equal(t, 1000, Multiplier(secondOfMinute(59).Add(time.Second)), "second 0 of the next minute")
	assert.Equal(t, 1, Multiplier(secondOfMinute(59).Add(2*time.Second)), "second 1 leaves the window")
}

func TestComputeEndToEndExample(t *testing.T) {
	c := New(DefaultPeriod, log.NewNoopLogger())

	// device A register 2, device B control 10, second 20 -> multiplier 1
	r := c.Compute(secondOfMinute(20), Inputs{DeviceAValue: 2, DeviceBValue: 10})
	assert.Equal(t, 1, r.Multiplier)
	assert.Equal(t, 12, r.Result)
	assert.Equal(t, r, c.Result())
}

func TestResultRetainedUntilOverwritten(t *testing.T) {
	c := New(DefaultPeriod, log.NewNoopLogger())

	first := c.Compute(secondOfMinute(10), Inputs{DeviceAValue: 1, DeviceBValue: 1})
	assert.Equal(t, first, c.Result())

	second := c.Compute(secondOfMinute(50), Inputs{DeviceAValue: 3, DeviceBValue: 5})
	assert.Equal(t, 8000, second.Result)
	assert.Equal(t, second, c.Result())
	assert.Equal(t, secondOfMinute(50), second.ComputedAt)
}

func TestDefaultPeriodFallback(t *testing.T) {
	c := New(0, log.NewNoopLogger())
	assert.Equal(t, DefaultPeriod, c.Period())
}
