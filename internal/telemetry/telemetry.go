// internal/telemetry/telemetry.go
//
// OpenTelemetry tracing for the Countle server.
//   - Setup builds a tracer provider for one deployment (version and
//     environment come from config) and installs it globally.
//   - Spans go to OTLP/HTTP unless another exporter is supplied; the
//     exporter reads the standard OTEL_EXPORTER_OTLP_* variables.
//   - Root spans are sampled at Options.SampleRatio; children follow their
//     parent's decision.
//   - OTEL_RESOURCE_ATTRIBUTES is honoured on top of the built-in attributes.
package telemetry

import (
	"context"
	"fmt"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "countle"

// Options describes where spans come from and how many are kept.
type Options struct {
	Version     string
	Environment string
	// SampleRatio is the share of root traces kept, clamped to [0, 1].
	SampleRatio float64
	// Exporter replaces the OTLP/HTTP exporter when set.
	Exporter sdktrace.SpanExporter
}

// Provider owns the SDK tracer provider installed by Setup.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup builds the provider for opts and makes it the global one.
func Setup(ctx context.Context, opts Options) (*Provider, error) {
	exporter := opts.Exporter
	if exporter == nil {
		var err error
		if exporter, err = otlptracehttp.New(ctx); err != nil {
			return nil, fmt.Errorf("otlp exporter: %w", err)
		}
	}
	res, err := newResource(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(clamp(opts.SampleRatio)))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return &Provider{tp: tp}, nil
}

// newResource describes this process. Host attributes come from the SDK
// detector; nothing is merged with resource.Default, whose schema URL may
// differ from the detector's.
func newResource(ctx context.Context, opts Options) (*resource.Resource, error) {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	attrs := []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
		attribute.String("process.runtime.version", runtime.Version()),
	}
	if opts.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", opts.Environment))
	}
	return resource.New(ctx,
		resource.WithHost(),
		resource.WithFromEnv(),
		resource.WithAttributes(attrs...),
	)
}

func clamp(r float64) float64 {
	return min(max(r, 0), 1)
}

// Tracer returns a tracer for one component of the server.
func (p *Provider) Tracer(component string) trace.Tracer {
	return p.tp.Tracer(serviceName + "/" + component)
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}

// NoopTracer is used when tracing is disabled.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(serviceName + "/noop")
}
