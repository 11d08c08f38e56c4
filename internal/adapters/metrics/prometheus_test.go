package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canlab/cansim/internal/domain"
)

func TestObserverRegistersAndCounts(t *testing.T) {
	o := NewObserver()
	reg := prometheus.NewRegistry()
	require.NoError(t, o.Register(reg))

	o.ObserveFrame(domain.StreamDeviceA)
	o.ObserveFrame(domain.StreamDeviceA)
	o.ObserveFrame(domain.StreamControl)
	o.ObserveDropped()
	o.ObserveRate(domain.StreamDeviceA, 9.5)
	o.ObserveWatchdog(domain.WatchdogTimedOut)
	o.ObserveScale(2.0)

	assert.Equal(t, 2.0, testutil.ToFloat64(o.framesTotal.WithLabelValues("device_a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.framesTotal.WithLabelValues("control")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.droppedTotal))
	assert.Equal(t, 9.5, testutil.ToFloat64(o.frameRate.WithLabelValues("device_a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.watchdogStatus))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.simScale))

	o.ObserveWatchdog(domain.WatchdogOK)
	assert.Equal(t, 0.0, testutil.ToFloat64(o.watchdogStatus))
}

func TestObserverDoubleRegisterFails(t *testing.T) {
	o := NewObserver()
	reg := prometheus.NewRegistry()
	require.NoError(t, o.Register(reg))
	assert.Error(t, o.Register(reg))
}
