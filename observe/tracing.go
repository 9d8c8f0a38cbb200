package observe

import (
	"context"

	genagents "github.com/wafo210715/generative-agents"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing adds span events for attempts, fallbacks and provider calls to the
// span in the event's context. With task.Runtime.Tracer set, that is the
// run's span; without a recording span the hook does nothing.
type Tracing struct{}

// NewTracing creates a Tracing hook.
func NewTracing() *Tracing {
	return &Tracing{}
}

// OnAttempt records an "attempt" event.
func (*Tracing) OnAttempt(ctx context.Context, e genagents.AttemptEvent) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.Int("attempt.number", e.Number),
		attribute.Int("attempt.max", e.MaxAttempts),
		attribute.String("attempt.result", AttemptReason(e.Err)),
	}
	if e.Err != nil {
		attrs = append(attrs, attribute.String("attempt.error", e.Err.Error()))
	}
	span.AddEvent("attempt", trace.WithAttributes(attrs...))
}

// OnFallback records a "fallback" event.
func (*Tracing) OnFallback(ctx context.Context, e genagents.FallbackEvent) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("fallback", trace.WithAttributes(
		attribute.Int("fallback.attempts", e.Attempts),
	))
}

// OnAfterModelCall records a "model_call" event, and the provider error if
// the call failed.
func (*Tracing) OnAfterModelCall(ctx context.Context, e genagents.AfterModelCallEvent) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("model.name", e.Model),
		attribute.String("model.id", e.ModelID),
		attribute.String("model.role", e.Role.String()),
		attribute.Int64("model.duration_ms", e.Duration.Milliseconds()),
	}
	if e.Info != nil {
		attrs = append(attrs,
			attribute.Int("model.input_tokens", e.Info.InputTokens),
			attribute.Int("model.output_tokens", e.Info.OutputTokens),
		)
	}
	span.AddEvent("model_call", trace.WithAttributes(attrs...))
	if e.Error != nil {
		span.RecordError(e.Error)
	}
}

// OnAfterRun marks the span as failed for configuration errors.
func (*Tracing) OnAfterRun(ctx context.Context, e genagents.AfterRunEvent) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || e.Error == nil {
		return
	}
	span.SetStatus(codes.Error, e.Error.Error())
}

var (
	_ genagents.AttemptHook        = (*Tracing)(nil)
	_ genagents.FallbackHook       = (*Tracing)(nil)
	_ genagents.AfterModelCallHook = (*Tracing)(nil)
	_ genagents.AfterRunHook       = (*Tracing)(nil)
)
