/*
Package flowcanvas is the state engine behind a visual chat-bot flow builder.

# Overview

A flow is a set of message nodes joined by directed edges. The canvas that
draws it is an outside collaborator: it reports gestures (drop, drag, click,
connect) and renders whatever state the engine hands back. The engine owns
the data and keeps three rules true after every mutation:

  - at most one edge leaves any node
  - edges only ever join nodes that exist
  - at most one node is selected

# Basic Usage

A Session wires the pieces together for one open editor:

	st := store.NewMemoryStore()
	s := flowcanvas.NewSession(st, flowcanvas.WithLogger(logger))
	if err := s.Open(ctx); err != nil {
	    log.Fatal(err)
	}

	a, _ := s.DropNode(flowcanvas.NodeTypeMessage, flowcanvas.Position{X: 100, Y: 100})
	b, _ := s.DropNode(flowcanvas.NodeTypeMessage, flowcanvas.Position{X: 100, Y: 250})

	_, err := s.Connect(ctx, flowcanvas.Connection{
	    Source: a.ID, SourceHandle: "b",
	    Target: b.ID, TargetHandle: "a",
	})

	s.ClickNode(a.ID)
	s.SetLabel("Hello!")

	if err := s.Save(ctx); err != nil {
	    var verr *flowcanvas.ValidationError
	    if errors.As(err, &verr) {
	        fmt.Println(verr.UnconnectedNodes)
	    }
	}

# Components

The parts can also be used on their own:

  - Graph holds nodes and edges and enforces the rules above.
  - Editor keeps a single label field in step with the selected node.
  - ValidateForSave decides whether a flow may be saved.
  - Persister writes a flow to a store.Store and reads it back, repairing
    damaged records instead of trusting them.

# Notices

User-facing messages (toasts in a canvas UI) are published on an
event.Bus:

	s.Subscribe(func(e event.Event) {
	    fmt.Println(e.Notice.Level, e.Notice.Message)
	}, event.TypeFlowSaved, event.TypeConnectionRejected)

# Persistence

The stored record is a single JSON document:

	{"nodes": [...], "edges": [...], "viewport": {"x": 0, "y": 0, "zoom": 1}}

It is written under one key (default "flow-key") with a single Put. Store
backends live in the store subpackage: memory, SQLite and Redis.

# Observability

Logging uses log/slog. Metrics and tracing use OpenTelemetry and are off by
default:

	s := flowcanvas.NewSession(st,
	    flowcanvas.WithLogger(logger),
	    flowcanvas.WithMetrics(true),
	    flowcanvas.WithTracing(true),
	)
*/
package flowcanvas
