package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_AllMetricsInitialized(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r.OptimizeCallsTotal)
	require.NotNil(t, r.OptimizeSuccessTotal)
	require.NotNil(t, r.OptimizeFailureTotal)
	require.NotNil(t, r.OptimizeDuration)
	require.NotNil(t, r.OptimizeCost)
	require.NotNil(t, r.ExperimentCellsRunning)
	require.NotNil(t, r.ExperimentCellsTotal)
	require.NotNil(t, r.PrometheusRegistry())
}

func TestObserveCell_SuccessIncrementsSuccessAndCost(t *testing.T) {
	r := NewRegistry()
	r.ObserveCell("ga", true, "", 0.05, 0.2)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.OptimizeCallsTotal.WithLabelValues("ga")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.OptimizeSuccessTotal.WithLabelValues("ga")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.ExperimentCellsTotal))
}

func TestObserveCell_FailureIncrementsFailureByReason(t *testing.T) {
	r := NewRegistry()
	r.ObserveCell("aco", false, "NO_PATH", 0.01, 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.OptimizeFailureTotal.WithLabelValues("aco", "NO_PATH")))
	assert.Equal(t, float64(0), testutil.ToFloat64(r.OptimizeSuccessTotal.WithLabelValues("aco")))
}

func TestDefaultRegistry_ReturnsSameInstance(t *testing.T) {
	a := DefaultRegistry()
	b := DefaultRegistry()
	assert.Same(t, a, b)
}
