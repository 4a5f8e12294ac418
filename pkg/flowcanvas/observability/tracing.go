package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("flowcanvas")

// SpanManager handles trace span lifecycle for persistence operations.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartSaveSpan starts a span covering one save.
	StartSaveSpan(ctx context.Context, key string, nodes, edges int) (context.Context, trace.Span)

	// StartRestoreSpan starts a span covering one restore.
	StartRestoreSpan(ctx context.Context, key string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return otelSpanManager{}
}

// StartSaveSpan starts a span for a save.
func (otelSpanManager) StartSaveSpan(ctx context.Context, key string, nodes, edges int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "flowcanvas.save",
		trace.WithAttributes(
			attribute.String("flow.key", key),
			attribute.Int("flow.nodes", nodes),
			attribute.Int("flow.edges", edges),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartRestoreSpan starts a span for a restore.
func (otelSpanManager) StartRestoreSpan(ctx context.Context, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "flowcanvas.restore",
		trace.WithAttributes(attribute.String("flow.key", key)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the span in ctx, if it is recording.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
