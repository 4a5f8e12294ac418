package flowcanvas

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/observability"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/store"
)

// DefaultFlowKey is the store key a flow is saved under.
const DefaultFlowKey = "flow-key"

// DefaultStoreTimeout bounds each store call.
const DefaultStoreTimeout = 5 * time.Second

// Persister saves a flow to a store under one fixed key and restores it.
//
// Saves are serialized: a Save that starts while another is running fails
// with ErrSaveInProgress instead of queueing. Each store call is bounded by
// the configured timeout.
type Persister struct {
	store   store.Store
	key     string
	timeout time.Duration

	saving sync.Mutex

	logger      *slog.Logger
	metrics     observability.MetricsRecorder
	spans       observability.SpanManager
	onMalformed []func(*MalformedStateError)
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithStoreKey sets the key the flow is stored under.
// Default: "flow-key"
func WithStoreKey(key string) PersisterOption {
	return func(p *Persister) {
		if key != "" {
			p.key = key
		}
	}
}

// WithStoreTimeout bounds each store call. Zero disables the bound.
// Default: 5s
func WithStoreTimeout(d time.Duration) PersisterOption {
	return func(p *Persister) {
		if d >= 0 {
			p.timeout = d
		}
	}
}

// WithPersistLogger sets the logger for save and restore events.
func WithPersistLogger(logger *slog.Logger) PersisterOption {
	return func(p *Persister) {
		p.logger = logger
	}
}

// WithPersistMetrics enables OpenTelemetry metrics for saves and restores.
func WithPersistMetrics(enabled bool) PersisterOption {
	return func(p *Persister) {
		if enabled {
			p.metrics = observability.NewMetricsRecorder()
		} else {
			p.metrics = observability.NoopMetrics{}
		}
	}
}

// WithPersistTracing enables OpenTelemetry spans for saves and restores.
func WithPersistTracing(enabled bool) PersisterOption {
	return func(p *Persister) {
		if enabled {
			p.spans = observability.NewSpanManager()
		} else {
			p.spans = observability.NoopSpanManager{}
		}
	}
}

// OnMalformed registers a callback for stored records that cannot be decoded.
// Restore itself recovers; the callback exists so the user can be told.
// Callbacks accumulate and run in registration order.
func OnMalformed(fn func(*MalformedStateError)) PersisterOption {
	return func(p *Persister) {
		if fn != nil {
			p.onMalformed = append(p.onMalformed, fn)
		}
	}
}

// NewPersister creates a persister over s.
func NewPersister(s store.Store, opts ...PersisterOption) *Persister {
	p := &Persister{
		store:   s,
		key:     DefaultFlowKey,
		timeout: DefaultStoreTimeout,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the store key in use.
func (p *Persister) Key() string {
	return p.key
}

// Save writes the snapshot and viewport as a single record.
// Callers are expected to have run ValidateForSave first.
// Failures are *PersistenceError, or ErrSaveInProgress.
func (p *Persister) Save(ctx context.Context, s Snapshot, vp Viewport) error {
	if !p.saving.TryLock() {
		return ErrSaveInProgress
	}
	defer p.saving.Unlock()

	start := time.Now()
	done := observability.TimedOperation()
	ctx, span := p.spans.StartSaveSpan(ctx, p.key, len(s.Nodes), len(s.Edges))

	data, err := encodeFlow(s, vp)
	if err == nil {
		callCtx, cancel := p.bounded(ctx)
		err = p.store.Put(callCtx, p.key, data)
		cancel()
	}
	if err != nil {
		err = &PersistenceError{Op: "save", Key: p.key, Err: err}
	}

	p.spans.EndSpanWithError(span, err)
	p.metrics.RecordSave(ctx, err == nil, time.Since(start), int64(len(data)))
	if err != nil {
		observability.LogSaveError(p.logger, p.key, err)
		return err
	}
	observability.LogSave(p.logger, p.key, len(s.Nodes), len(s.Edges), len(data), done())
	return nil
}

// Restore reads the stored flow.
//
// ok is false when nothing usable is stored: the key is absent or the
// record is not decodable. Damaged parts of an otherwise readable record are
// repaired (see Flow.Repairs); missing viewport fields take DefaultViewport
// values. err is non-nil only when the store itself fails.
func (p *Persister) Restore(ctx context.Context) (f Flow, ok bool, err error) {
	start := time.Now()
	done := observability.TimedOperation()
	ctx, span := p.spans.StartRestoreSpan(ctx, p.key)

	outcome := "restored"
	defer func() {
		p.spans.EndSpanWithError(span, err)
		p.metrics.RecordRestore(ctx, outcome, time.Since(start))
		observability.LogRestore(p.logger, p.key, outcome, len(f.Nodes), len(f.Edges), done())
	}()

	callCtx, cancel := p.bounded(ctx)
	data, getErr := p.store.Get(callCtx, p.key)
	cancel()
	if errors.Is(getErr, store.ErrNotFound) {
		outcome = "empty"
		return Flow{}, false, nil
	}
	if getErr != nil {
		outcome = "error"
		return Flow{}, false, &PersistenceError{Op: "restore", Key: p.key, Err: getErr}
	}

	f, decodeErr := decodeFlow(data, func(kind, id, reason string) {
		observability.LogRepair(p.logger, kind, id, reason)
		observability.AddSpanEvent(ctx, "repair",
			attribute.String("record", kind),
			attribute.String("id", id),
			attribute.String("reason", reason),
		)
	})
	if decodeErr != nil {
		outcome = "malformed"
		malformed := &MalformedStateError{Key: p.key, Err: decodeErr}
		observability.LogMalformed(p.logger, p.key, malformed)
		for _, fn := range p.onMalformed {
			fn(malformed)
		}
		return Flow{}, false, nil
	}
	return f, true, nil
}

func (p *Persister) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}
