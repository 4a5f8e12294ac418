package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records flowcanvas metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordMutation counts a graph mutation such as "add_node" or "connect".
	RecordMutation(ctx context.Context, op string)

	// RecordConnectionRejected counts a declined connection by reason.
	RecordConnectionRejected(ctx context.Context, reason string)

	// RecordSave records a save attempt with its duration and encoded size.
	RecordSave(ctx context.Context, success bool, duration time.Duration, sizeBytes int64)

	// RecordRestore records a restore with its outcome.
	RecordRestore(ctx context.Context, outcome string, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	mutations      metric.Int64Counter
	rejections     metric.Int64Counter
	saves          metric.Int64Counter
	saveLatency    metric.Float64Histogram
	flowSize       metric.Int64Histogram
	restores       metric.Int64Counter
	restoreLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("flowcanvas")

	mutations, err := meter.Int64Counter("flowcanvas.graph.mutations",
		metric.WithDescription("Number of graph mutations"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter("flowcanvas.connections.rejected",
		metric.WithDescription("Number of rejected connection attempts"),
	)
	if err != nil {
		return nil, err
	}

	saves, err := meter.Int64Counter("flowcanvas.flow.saves",
		metric.WithDescription("Number of save attempts"),
	)
	if err != nil {
		return nil, err
	}

	saveLatency, err := meter.Float64Histogram("flowcanvas.flow.save_latency_ms",
		metric.WithDescription("Save latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	flowSize, err := meter.Int64Histogram("flowcanvas.flow.size_bytes",
		metric.WithDescription("Encoded flow size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	restores, err := meter.Int64Counter("flowcanvas.flow.restores",
		metric.WithDescription("Number of restores"),
	)
	if err != nil {
		return nil, err
	}

	restoreLatency, err := meter.Float64Histogram("flowcanvas.flow.restore_latency_ms",
		metric.WithDescription("Restore latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		mutations:      mutations,
		rejections:     rejections,
		saves:          saves,
		saveLatency:    saveLatency,
		flowSize:       flowSize,
		restores:       restores,
		restoreLatency: restoreLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordMutation records a graph mutation.
func (m *otelMetrics) RecordMutation(ctx context.Context, op string) {
	m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// RecordConnectionRejected records a rejected connection.
func (m *otelMetrics) RecordConnectionRejected(ctx context.Context, reason string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordSave records a save attempt.
func (m *otelMetrics) RecordSave(ctx context.Context, success bool, duration time.Duration, sizeBytes int64) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.saves.Add(ctx, 1, attrs)
	m.saveLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if success {
		m.flowSize.Record(ctx, sizeBytes)
	}
}

// RecordRestore records a restore.
func (m *otelMetrics) RecordRestore(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.restores.Add(ctx, 1, attrs)
	m.restoreLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}
