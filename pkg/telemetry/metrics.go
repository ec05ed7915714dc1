package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsConfig mirrors the teacher's metrics.Config shape (namespace plus
// histogram buckets), renamed to this domain's subsystem.
type MetricsConfig struct {
	Namespace       string
	Subsystem       string
	LatencyBuckets  []float64
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:      "vrlcore",
		Subsystem:      "runtime",
		LatencyBuckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}
}

// Metrics holds the Prometheus collectors for both execution backends, the
// same registry-owning shape as the teacher's metrics.Metrics.
type Metrics struct {
	vmStepsExecuted   prometheus.Counter
	vmStepLimitAborts prometheus.Counter
	jitCompilations   prometheus.Counter
	jitCacheHits      prometheus.Counter
	jitCacheMisses    prometheus.Counter
	insertErrors      prometheus.Counter
	resolveLatency    *prometheus.HistogramVec

	registry *prometheus.Registry
}

func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config = DefaultMetricsConfig()
	}
	if len(config.LatencyBuckets) == 0 {
		config.LatencyBuckets = DefaultMetricsConfig().LatencyBuckets
	}

	registry := prometheus.NewRegistry()
	m := &Metrics{registry: registry}

	m.vmStepsExecuted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace, Subsystem: config.Subsystem,
		Name: "vm_steps_executed_total", Help: "Total bytecode steps executed by the VM backend.",
	})
	m.vmStepLimitAborts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace, Subsystem: config.Subsystem,
		Name: "vm_step_limit_aborts_total", Help: "Runs aborted for exceeding the VM step limit.",
	})
	m.jitCompilations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace, Subsystem: "jit",
		Name: "compilations_total", Help: "Programs compiled to native code via the LLVM backend.",
	})
	m.jitCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace, Subsystem: "jit",
		Name: "cache_hits_total", Help: "Promotion checks that reused an already-JITted function.",
	})
	m.jitCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace, Subsystem: "jit",
		Name: "cache_misses_total", Help: "Promotion checks that triggered a fresh JIT compilation.",
	})
	m.insertErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace, Subsystem: config.Subsystem,
		Name: "target_insert_errors_total", Help: "Target.Insert failures observed but not surfaced as an EvalError.",
	})
	m.resolveLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: config.Namespace, Subsystem: config.Subsystem,
		Name: "resolve_duration_seconds", Help: "Latency of a single program resolution, by backend.",
		Buckets: config.LatencyBuckets,
	}, []string{"backend"})

	registry.MustRegister(
		m.vmStepsExecuted, m.vmStepLimitAborts,
		m.jitCompilations, m.jitCacheHits, m.jitCacheMisses,
		m.insertErrors, m.resolveLatency,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) AddVMSteps(n int)       { m.vmStepsExecuted.Add(float64(n)) }
func (m *Metrics) RecordVMStepLimitAbort() { m.vmStepLimitAborts.Inc() }
func (m *Metrics) RecordJITCompilation()   { m.jitCompilations.Inc() }
func (m *Metrics) RecordJITCacheHit()      { m.jitCacheHits.Inc() }
func (m *Metrics) RecordJITCacheMiss()     { m.jitCacheMisses.Inc() }
func (m *Metrics) RecordInsertError()      { m.insertErrors.Inc() }

// RecordResolve records the wall-clock latency of one program run on the
// given backend ("vm", "jit" or "tree-walk").
func (m *Metrics) RecordResolve(backend string, d time.Duration) {
	m.resolveLatency.WithLabelValues(backend).Observe(d.Seconds())
}
