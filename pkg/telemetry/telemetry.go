// Package telemetry wires the engine's OpenTelemetry tracer, grounded on
// longregen-alicia's pkg/otel and lookatitude-beluga-ai's o11y tracer
// patterns, trimmed to the stdout exporter the teacher's go.mod carries.
// Span/event names follow the original Rust engine's dotted convention
// (core_engine.boot, core_engine.mode.{mode}).
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lingua-engine"

// Init installs a stdout-exporting TracerProvider as the global default and
// returns a shutdown func to flush/close it. serviceName tags every span's
// resource attributes.
func Init(serviceName string) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("telemetry: create stdout exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the engine's named tracer.
func Tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(tracerName)
}

// Record starts a span named name (dotted convention, e.g.
// "core_engine.boot" or "core_engine.mode.continuous"), runs fn, and ends
// the span with fn's error recorded if non-nil.
func Record(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := Tracer().Start(ctx, name)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
