package flowcanvas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/event"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/observability"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/store"
)

// Notice texts published by a Session.
const (
	MessageSaved       = "Flow saved successfully!"
	MessageSaveFailed  = "Could not save the flow."
	MessageSaveBusy    = "A save is already in progress."
	MessageRestored    = "Flow restored."
	MessageMalformed   = "The saved flow could not be read and was ignored."
	MessageRestoreFail = "Could not load the saved flow."
)

// Session is one open editor: a graph, the label editor bound to it, the
// camera, and the store the flow is saved to.
//
// Each method corresponds to one user gesture on the canvas. Notices meant
// for the user are published on the session's event bus after the session
// lock is released, so handlers may call back into the session.
type Session struct {
	id string

	mu       sync.Mutex
	viewport Viewport

	graph     *Graph
	editor    *Editor
	persister *Persister
	bus       *event.Bus
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
}

// NewSession opens a session that saves to st.
func NewSession(st store.Store, opts ...SessionOption) *Session {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session{
		id:       uuid.New().String(),
		viewport: DefaultViewport,
		bus:      cfg.bus,
		metrics:  observability.NoopMetrics{},
	}
	if s.bus == nil {
		s.bus = event.NewBus()
	}
	if cfg.metrics {
		s.metrics = observability.NewMetricsRecorder()
	}
	s.logger = observability.SessionLogger(cfg.logger, s.id)

	s.graph = NewGraph(cfg.graphOpts...)
	if cfg.initialNode {
		s.graph.AddNode(NodeTypeMessage, cfg.initialNodePos)
	}
	s.editor = NewEditor(s.graph)

	popts := []PersisterOption{
		WithPersistLogger(s.logger),
		WithPersistMetrics(cfg.metrics),
		WithPersistTracing(cfg.tracing),
	}
	popts = append(popts, cfg.persisterOpts...)
	popts = append(popts, OnMalformed(func(*MalformedStateError) {
		s.notify(event.TypeFlowMalformed, event.LevelError, MessageMalformed)
	}))
	s.persister = NewPersister(st, popts...)

	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Graph returns the session's graph for read access.
func (s *Session) Graph() *Graph { return s.graph }

// Editor returns the session's label editor.
func (s *Session) Editor() *Editor { return s.editor }

// Persister returns the session's persister.
func (s *Session) Persister() *Persister { return s.persister }

// Bus returns the bus notices are published on.
func (s *Session) Bus() *event.Bus { return s.bus }

// Subscribe registers handler for session notices. See event.Bus.Subscribe.
func (s *Session) Subscribe(handler event.Handler, types ...string) (unsubscribe func()) {
	return s.bus.Subscribe(handler, types...)
}

// DropNode places a new node of type t at pos.
func (s *Session) DropNode(t NodeType, pos Position) (Node, error) {
	if !t.Valid() {
		return Node{}, fmt.Errorf("drop %q: %w", t, ErrUnknownNodeType)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.graph.AddNode(t, pos)
	s.mutated("add_node")
	return n, nil
}

// MoveNode sets a node's position after a drag.
func (s *Session) MoveNode(id string, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.graph.Node(id); !ok {
		return fmt.Errorf("move %q: %w", id, ErrNodeNotFound)
	}
	s.graph.SetNodePosition(id, pos)
	s.mutated("move_node")
	return nil
}

// RemoveNode deletes a node and its edges. Unknown ids are ignored.
func (s *Session) RemoveNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.RemoveNode(id)
	s.editor.Sync()
	s.mutated("remove_node")
}

// RemoveEdge deletes an edge. Unknown ids are ignored.
func (s *Session) RemoveEdge(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.RemoveEdge(id)
	s.mutated("remove_edge")
}

// ClickNode selects a node and loads its label into the editor.
func (s *Session) ClickNode(id string) (Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.editor.Select(id)
	if !ok {
		return Node{}, fmt.Errorf("select %q: %w", id, ErrNodeNotFound)
	}
	s.mutated("select")
	return n, nil
}

// ClickPane leaves edit mode. The "Go Back" control does the same.
func (s *Session) ClickPane() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor.Clear()
	s.mutated("clear_selection")
}

// Connect creates an edge. A rejected connection publishes an error notice
// and returns the *ConnectionRejectedError.
func (s *Session) Connect(ctx context.Context, c Connection) (Edge, error) {
	s.mu.Lock()
	e, err := s.graph.TryConnect(c)
	if err != nil {
		s.editor.Sync()
	} else {
		s.mutated("connect")
	}
	s.mu.Unlock()

	var rejected *ConnectionRejectedError
	if errors.As(err, &rejected) {
		observability.LogConnectionRejected(s.logger, c.Source, c.Target, string(rejected.Reason))
		s.metrics.RecordConnectionRejected(ctx, string(rejected.Reason))
		s.notify(event.TypeConnectionRejected, event.LevelError, rejected.Message())
	}
	if err != nil {
		return Edge{}, err
	}
	return e, nil
}

// SetLabel changes the label field and the selected node's label.
func (s *Session) SetLabel(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor.SetLabel(value)
	s.mutated("set_label")
}

// SetViewport records the camera position.
func (s *Session) SetViewport(vp Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewport = vp
}

// Viewport returns the camera position.
func (s *Session) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewport
}

// Snapshot returns a copy of the graph.
func (s *Session) Snapshot() Snapshot {
	return s.graph.Snapshot()
}

// Label returns the editor's field value.
func (s *Session) Label() string {
	return s.editor.Label()
}

// SelectedID returns the node under edit, or "".
func (s *Session) SelectedID() string {
	return s.editor.SelectedID()
}

// Save validates the flow and writes it to the store.
//
// A flow that fails ValidateForSave is not written; the returned error is
// a *ValidationError. Every outcome publishes a notice.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	snap := s.graph.Snapshot()
	vp := s.viewport
	s.mu.Unlock()

	res := ValidateForSave(snap.Nodes, snap.Edges)
	if !res.OK() {
		reasons := make([]string, len(res.Reasons))
		for i, r := range res.Reasons {
			reasons[i] = string(r)
		}
		observability.LogValidationFailed(s.logger, reasons, res.UnconnectedNodes)
		s.notify(event.TypeFlowSaveFailed, event.LevelError, res.Message())
		return res.Err()
	}

	if err := s.persister.Save(ctx, snap, vp); err != nil {
		msg := MessageSaveFailed
		if errors.Is(err, ErrSaveInProgress) {
			msg = MessageSaveBusy
		}
		s.notify(event.TypeFlowSaveFailed, event.LevelError, msg)
		return err
	}
	s.notify(event.TypeFlowSaved, event.LevelSuccess, MessageSaved)
	return nil
}

// Reset replaces the canvas with the saved flow.
//
// It reports false when nothing usable is stored, leaving the canvas as it
// was. A store failure also leaves the canvas alone and is returned.
func (s *Session) Reset(ctx context.Context) (bool, error) {
	f, ok, err := s.persister.Restore(ctx)
	if err != nil {
		s.notify(event.TypeFlowRestoreFailed, event.LevelError, MessageRestoreFail)
		return false, err
	}
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	s.graph.ReplaceAll(f.Nodes, f.Edges)
	s.editor.Sync()
	s.viewport = f.Viewport
	s.mutated("replace_all")
	s.mu.Unlock()

	s.notify(event.TypeFlowRestored, event.LevelInfo, MessageRestored)
	return true, nil
}

// Open restores the saved flow, if any. Call it once after NewSession.
func (s *Session) Open(ctx context.Context) error {
	_, err := s.Reset(ctx)
	return err
}

func (s *Session) mutated(op string) {
	s.metrics.RecordMutation(context.Background(), op)
}

func (s *Session) notify(eventType string, level event.Level, message string) {
	s.bus.Publish(event.New(eventType, s.id, event.Notice{Level: level, Message: message}))
}
