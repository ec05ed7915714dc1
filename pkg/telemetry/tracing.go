package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig mirrors the teacher's tracing.Config, minus the OTLP/gRPC
// exporter and HTTP-header-propagation helpers: this module has no network
// boundary to propagate trace context across, only in-process Runtime
// calls, so stdout is the only exporter a compiler/bench invocation needs.
type TracingConfig struct {
	ServiceName  string
	Environment  string
	SamplingRate float64
	Enabled      bool
}

func DefaultTracingConfig() TracingConfig {
	return TracingConfig{ServiceName: "vrlcore", Environment: "development", SamplingRate: 1.0, Enabled: true}
}

// TracerProvider wraps the OpenTelemetry SDK provider the way the teacher's
// tracing.TracerProvider does.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

func InitTracing(config TracingConfig) (*TracerProvider, error) {
	if !config.Enabled {
		return &TracerProvider{provider: sdktrace.NewTracerProvider()}, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(config.ServiceName),
			attribute.String("deployment.environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: building resource: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case config.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case config.SamplingRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(config.SamplingRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &TracerProvider{provider: tp}, nil
}

func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	return tp.provider.Shutdown(ctx)
}

func Tracer() trace.Tracer {
	return otel.Tracer("vrlcore")
}

// StartSpan opens a span with the given name under the global tracer.
// pkg/runtime does not call it, so a Runtime invocation opens no spans.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}
