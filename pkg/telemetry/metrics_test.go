package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_DefaultConfigFallback(t *testing.T) {
	m := NewMetrics(MetricsConfig{})
	assert.NotNil(t, m.Registry())
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(DefaultMetricsConfig())

	m.AddVMSteps(5)
	m.AddVMSteps(3)
	assert.Equal(t, float64(8), testutil.ToFloat64(m.vmStepsExecuted))

	m.RecordVMStepLimitAbort()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.vmStepLimitAborts))

	m.RecordJITCompilation()
	m.RecordJITCompilation()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.jitCompilations))

	m.RecordInsertError()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.insertErrors))
}

func TestMetrics_RecordResolveByBackend(t *testing.T) {
	m := NewMetrics(DefaultMetricsConfig())

	m.RecordResolve("vm", 2*time.Millisecond)
	m.RecordResolve("jit", 10*time.Microsecond)

	count, err := testutil.GatherAndCount(m.Registry(), "vrlcore_runtime_resolve_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 2, count, "vm and jit backends should produce distinct histogram series")
}
