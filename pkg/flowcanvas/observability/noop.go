package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

// RecordMutation does nothing.
func (NoopMetrics) RecordMutation(context.Context, string) {}

// RecordConnectionRejected does nothing.
func (NoopMetrics) RecordConnectionRejected(context.Context, string) {}

// RecordSave does nothing.
func (NoopMetrics) RecordSave(context.Context, bool, time.Duration, int64) {}

// RecordRestore does nothing.
func (NoopMetrics) RecordRestore(context.Context, string, time.Duration) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartSaveSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartSaveSpan(ctx context.Context, _ string, _, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartRestoreSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartRestoreSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(trace.Span, error) {}
