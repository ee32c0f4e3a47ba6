// Package tracing installs the OpenTelemetry tracer provider. Spans are
// exported to Jaeger when an endpoint is configured; otherwise the global
// no-op provider stays in place.
package tracing

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Options struct {
	Endpoint    string
	ServiceName string
	SampleRatio float64
	// Exporter replaces the Jaeger exporter. Used by tests.
	Exporter sdktrace.SpanExporter
}

// ShutdownFunc flushes and stops the provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs a global tracer provider and W3C propagators. With neither
// an endpoint nor an exporter it returns a no-op shutdown and changes nothing.
func Init(opts Options) (ShutdownFunc, error) {
	exporter := opts.Exporter
	if exporter == nil {
		if opts.Endpoint == "" {
			return noopShutdown, nil
		}
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(opts.Endpoint)))
		if err != nil {
			return nil, fmt.Errorf("tracing: jaeger exporter: %w", err)
		}
		exporter = exp
	}
	if opts.SampleRatio < 0 || opts.SampleRatio > 1 {
		return nil, errors.New("tracing: sample ratio must be within [0, 1]")
	}

	name := opts.ServiceName
	if name == "" {
		name = "delivery-order"
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", name))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}
