package flowcanvas

import (
	"log/slog"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/event"
)

// sessionConfig holds configuration for a Session.
type sessionConfig struct {
	logger         *slog.Logger
	metrics        bool
	tracing        bool
	bus            *event.Bus
	graphOpts      []GraphOption
	persisterOpts  []PersisterOption
	initialNode    bool
	initialNodePos Position
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		initialNode:    true,
		initialNodePos: Position{X: 250, Y: 5},
	}
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

// WithLogger sets the structured logger. A nil logger disables logging.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	s := flowcanvas.NewSession(st, flowcanvas.WithLogger(logger))
func WithLogger(logger *slog.Logger) SessionOption {
	return func(c *sessionConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics.
// Default: false
func WithMetrics(enabled bool) SessionOption {
	return func(c *sessionConfig) {
		c.metrics = enabled
	}
}

// WithTracing enables OpenTelemetry spans around save and restore.
// Default: false
func WithTracing(enabled bool) SessionOption {
	return func(c *sessionConfig) {
		c.tracing = enabled
	}
}

// WithBus publishes notices on an existing bus instead of a private one.
func WithBus(bus *event.Bus) SessionOption {
	return func(c *sessionConfig) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// WithGraphOptions passes options to the session's Graph.
func WithGraphOptions(opts ...GraphOption) SessionOption {
	return func(c *sessionConfig) {
		c.graphOpts = append(c.graphOpts, opts...)
	}
}

// WithPersisterOptions passes options to the session's Persister.
func WithPersisterOptions(opts ...PersisterOption) SessionOption {
	return func(c *sessionConfig) {
		c.persisterOpts = append(c.persisterOpts, opts...)
	}
}

// WithoutInitialNode starts the session with an empty canvas.
// By default a fresh session holds one message node at (250, 5).
func WithoutInitialNode() SessionOption {
	return func(c *sessionConfig) {
		c.initialNode = false
	}
}
