// Package observability provides logging, metrics, and tracing for flowcanvas.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// SessionLogger returns a logger carrying the session id, or nil for a nil logger.
func SessionLogger(logger *slog.Logger, sessionID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("session_id", sessionID))
}

// LogSave logs a successful save.
func LogSave(logger *slog.Logger, key string, nodes, edges, sizeBytes int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("flow saved",
		slog.String("key", key),
		slog.Int("nodes", nodes),
		slog.Int("edges", edges),
		slog.Int("size_bytes", sizeBytes),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSaveError logs a save that was refused or failed.
func LogSaveError(logger *slog.Logger, key string, err error) {
	if logger == nil {
		return
	}
	logger.Error("flow save failed",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// LogRestore logs the outcome of a restore. outcome is one of
// "restored", "empty", "malformed" or "error".
func LogRestore(logger *slog.Logger, key, outcome string, nodes, edges int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("flow restore",
		slog.String("key", key),
		slog.String("outcome", outcome),
		slog.Int("nodes", nodes),
		slog.Int("edges", edges),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogMalformed logs a stored record that could not be decoded (non-fatal).
func LogMalformed(logger *slog.Logger, key string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("stored flow is malformed, keeping current state",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// LogRepair logs one record dropped or corrected during restore.
func LogRepair(logger *slog.Logger, kind, id, reason string) {
	if logger == nil {
		return
	}
	logger.Warn("repaired stored flow",
		slog.String("record", kind),
		slog.String("id", id),
		slog.String("reason", reason),
	)
}

// LogConnectionRejected logs a declined connection attempt.
func LogConnectionRejected(logger *slog.Logger, source, target, reason string) {
	if logger == nil {
		return
	}
	logger.Debug("connection rejected",
		slog.String("source", source),
		slog.String("target", target),
		slog.String("reason", reason),
	)
}

// LogValidationFailed logs a save blocked by validation.
func LogValidationFailed(logger *slog.Logger, reasons []string, unconnected []string) {
	if logger == nil {
		return
	}
	logger.Info("flow not saveable",
		slog.Any("reasons", reasons),
		slog.Any("unconnected_nodes", unconnected),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
