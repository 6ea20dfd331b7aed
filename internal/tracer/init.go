package tracer

import (
	"context"
	"fmt"

	"grant-assistant-be/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const serviceName = "grant-assistant-be"

// Shutdown flushes pending spans. It is always safe to call.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// InitTracer installs the global OTLP HTTP tracer provider described by cfg.
// With tracing disabled it installs nothing and returns a no-op Shutdown.
func InitTracer(ctx context.Context, cfg config.AppConfig) (Shutdown, error) {
	if !cfg.OtelEnabled {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OtelEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return noop, fmt.Errorf("create otlp exporter for %s: %w", cfg.OtelEndpoint, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(cfg)),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// newResource tags every span with the service identity and deployment environment
func newResource(cfg config.AppConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentKey.String(cfg.Environment),
	)
}
