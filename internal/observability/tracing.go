package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer installs a process-wide TracerProvider under serviceName.
// Grounded on otel/init.go's Provider wrapper, trimmed to the SDK's
// in-process sampler/provider only — this module has no OTLP collector
// dependency wired (see DESIGN.md), so spans are recorded but exported
// only if the caller later attaches a span processor.
func InitTracer(serviceName string) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// Tracer returns the named tracer every orchestrator activity starts a
// span from.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
