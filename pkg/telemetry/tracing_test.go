package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	tp, err := InitTracing(TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestInitTracing_Enabled(t *testing.T) {
	cfg := DefaultTracingConfig()
	tp, err := InitTracing(cfg)
	require.NoError(t, err)
	require.NotNil(t, tp)
	defer tp.Shutdown(context.Background())

	_, span := StartSpan(context.Background(), "vrlcore.run_vm")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitTracing_SamplingRateBounds(t *testing.T) {
	for _, rate := range []float64{0.0, 0.5, 1.0} {
		cfg := DefaultTracingConfig()
		cfg.SamplingRate = rate
		tp, err := InitTracing(cfg)
		require.NoError(t, err)
		require.NotNil(t, tp)
		tp.Shutdown(context.Background())
	}
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.Equal(t, "vrlcore", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SamplingRate)
}
