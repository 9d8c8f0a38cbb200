package observe

import (
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of spans started by task runs.
const TracerName = "github.com/wafo210715/generative-agents/task"

// ServiceName identifies this module in exported spans.
const ServiceName = "genagents"

// NewWriterTracerProvider creates a tracer provider that pretty-prints every
// finished span to w. Spans are exported synchronously, so nothing is lost
// when a short-lived command exits; call Shutdown anyway to flush the
// exporter.
func NewWriterTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", ServiceName))),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

// Tracer returns the tracer task runtimes should use from tp.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	return tp.Tracer(TracerName)
}
