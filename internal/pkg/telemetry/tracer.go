package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used by every span in the module.
const TracerName = "github.com/samirrijal/mapcal"

// Span attribute keys.
const (
	AttrMapID      = attribute.Key("mapcal.map_id")
	AttrMethod     = attribute.Key("mapcal.calibration.method")
	AttrStatus     = attribute.Key("mapcal.calibration.status")
	AttrProjection = attribute.Key("mapcal.projection")
)

// InitTracer installs a global tracer provider exporting over OTLP/gRPC to
// addr. The returned function flushes and shuts the provider down.
func InitTracer(ctx context.Context, serviceName, addr string) (func(), error) {
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(addr),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
	)
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			slog.Error("tracer shutdown", "error", err)
		}
	}, nil
}

// Tracer returns the module tracer from the global provider. Without
// InitTracer it is a no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
