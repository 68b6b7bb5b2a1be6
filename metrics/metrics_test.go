package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGaugeUpdateIsObservable(t *testing.T) {
	reg := NewRegistry()
	g := NewRegisteredGauge("test_gauge", "a test gauge", reg)
	g.Update(275)

	mfs, err := reg.Gatherer().Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	require.Equal(t, float64(275), mfs[0].GetMetric()[0].GetGauge().GetValue())
}

func TestCounterIncrements(t *testing.T) {
	reg := NewRegistry()
	c := NewRegisteredCounter("test_counter", "a test counter", reg)
	c.Inc()
	c.Inc()

	mfs, err := reg.Gatherer().Gather()
	require.NoError(t, err)
	require.Equal(t, float64(2), mfs[0].GetMetric()[0].GetCounter().GetValue())
}

func TestSlashSeparatedNameIsSanitized(t *testing.T) {
	reg := NewRegistry()
	NewRegisteredGauge("sealer/maxBlockCanSeal", "a slash-separated name", reg)

	mfs, err := reg.Gatherer().Gather()
	require.NoError(t, err)
	require.Equal(t, "sealer_maxBlockCanSeal", mfs[0].GetName(), "a raw '/' is not a legal Prometheus metric name and must be sanitized before registration")
}
