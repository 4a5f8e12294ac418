package flowcanvas

import (
	"fmt"
	"sync"
)

// Graph owns the nodes and edges of a flow and is their only writer.
// Every mutation preserves these invariants:
//   - at most one edge leaves any node, whatever handle it uses
//   - every edge created through TryConnect names nodes present in the graph
//   - edge ids are unique
//   - at most one node is selected
//
// ReplaceAll is the exception: it installs its input as given.
//
// Graph is safe for concurrent use. Readers only ever receive copies.
type Graph struct {
	mu    sync.RWMutex
	nodes []Node
	edges []Edge

	ids            *IDGenerator
	allowSelfLoops bool
}

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithIDGenerator sets the generator used by AddNode.
func WithIDGenerator(g *IDGenerator) GraphOption {
	return func(gr *Graph) {
		if g != nil {
			gr.ids = g
		}
	}
}

// WithSelfLoops controls whether TryConnect accepts source == target.
// Default: true
func WithSelfLoops(allow bool) GraphOption {
	return func(gr *Graph) {
		gr.allowSelfLoops = allow
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		ids:            NewIDGenerator(),
		allowSelfLoops: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode places a new node with a fresh id and the default label.
//
// t is trusted: a type outside the closed set is stored as given, and such a
// node is dropped the next time the flow is restored. Convert untrusted input
// with ParseNodeType first, as Session.DropNode and the HTTP adapter do.
func (g *Graph) AddNode(t NodeType, pos Position) Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.ids.Next()
	for g.nodeIndex(id) >= 0 {
		id = g.ids.Next()
	}

	n := Node{
		ID:       id,
		Type:     t,
		Position: pos,
		Data:     NodeData{Label: DefaultLabel},
	}
	g.nodes = append(g.nodes, n)
	return n
}

// RemoveNode deletes a node and every edge touching it.
// No-op if the node does not exist.
func (g *Graph) RemoveNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.nodeIndex(id)
	if i < 0 {
		return
	}
	g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)

	kept := g.edges[:0]
	for _, e := range g.edges {
		if !e.Touches(id) {
			kept = append(kept, e)
		}
	}
	g.edges = kept
}

// UpdateNodeLabel sets a node's label. Selection is left untouched.
// No-op if the node does not exist.
func (g *Graph) UpdateNodeLabel(id, label string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if i := g.nodeIndex(id); i >= 0 {
		g.nodes[i].Data.Label = label
	}
}

// SetNodePosition moves a node. No-op if the node does not exist.
func (g *Graph) SetNodePosition(id string, pos Position) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if i := g.nodeIndex(id); i >= 0 {
		g.nodes[i].Position = pos
	}
}

// SelectNode marks exactly one node as selected and returns it.
// If id is unknown, nothing changes and ok is false.
func (g *Graph) SelectNode(id string) (Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.nodeIndex(id)
	if i < 0 {
		return Node{}, false
	}
	for j := range g.nodes {
		g.nodes[j].Selected = j == i
	}
	return g.nodes[i], true
}

// ClearSelection deselects every node.
func (g *Graph) ClearSelection() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.clearSelection()
}

func (g *Graph) clearSelection() {
	for i := range g.nodes {
		g.nodes[i].Selected = false
	}
}

// TryConnect creates the edge described by c.
//
// It fails with a *ConnectionRejectedError when:
//   - an edge already leaves c.Source (the selection is cleared as well)
//   - c.Source or c.Target is not in the graph
//   - a named handle is not declared by its node's type
//   - c.Source == c.Target and self-loops are disabled
//
// The edge id is EdgeID(c), suffixed with "-<n>" if another edge already
// holds that id.
func (g *Graph) TryConnect(c Connection) (Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	si, ti := g.nodeIndex(c.Source), g.nodeIndex(c.Target)
	if si < 0 || ti < 0 {
		return Edge{}, &ConnectionRejectedError{Reason: RejectUnknownNode, Source: c.Source, Target: c.Target}
	}
	if !g.nodes[si].Type.Handles().AcceptsSource(c.SourceHandle) ||
		!g.nodes[ti].Type.Handles().AcceptsTarget(c.TargetHandle) {
		return Edge{}, &ConnectionRejectedError{Reason: RejectUnknownHandle, Source: c.Source, Target: c.Target}
	}
	if !g.allowSelfLoops && c.Source == c.Target {
		return Edge{}, &ConnectionRejectedError{Reason: RejectSelfLoop, Source: c.Source, Target: c.Target}
	}
	if _, exists := g.outgoing(c.Source); exists {
		g.clearSelection()
		return Edge{}, &ConnectionRejectedError{Reason: RejectDuplicateSource, Source: c.Source, Target: c.Target}
	}

	e := newEdge(c)
	e.ID = g.freeEdgeID(e.ID)
	g.edges = append(g.edges, e)
	return cloneEdge(e), nil
}

// RemoveEdge deletes an edge. No-op if it does not exist.
func (g *Graph) RemoveEdge(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, e := range g.edges {
		if e.ID == id {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return
		}
	}
}

// ReplaceAll discards the current collections and installs copies of the
// given ones. The input is trusted; repair belongs to whoever produced it.
func (g *Graph) ReplaceAll(nodes []Node, edges []Edge) {
	s := Snapshot{Nodes: nodes, Edges: edges}.Clone()

	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = s.Nodes
	g.edges = s.Edges
}

// Snapshot returns a deep copy of the current state.
func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return Snapshot{Nodes: g.nodes, Edges: g.edges}.Clone()
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if i := g.nodeIndex(id); i >= 0 {
		return g.nodes[i], true
	}
	return Node{}, false
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, e := range g.edges {
		if e.ID == id {
			return cloneEdge(e), true
		}
	}
	return Edge{}, false
}

// Selected returns the selected node, if any.
func (g *Graph) Selected() (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, n := range g.nodes {
		if n.Selected {
			return n, true
		}
	}
	return Node{}, false
}

// OutgoingEdge returns the edge leaving the given node, if any.
func (g *Graph) OutgoingEdge(id string) (Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.outgoing(id)
	if !ok {
		return Edge{}, false
	}
	return cloneEdge(e), true
}

// Len returns the number of nodes and edges.
func (g *Graph) Len() (nodes, edges int) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes), len(g.edges)
}

func (g *Graph) nodeIndex(id string) int {
	for i, n := range g.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// freeEdgeID returns id, or id with the first numeric suffix no edge holds.
func (g *Graph) freeEdgeID(id string) string {
	taken := func(candidate string) bool {
		for _, e := range g.edges {
			if e.ID == candidate {
				return true
			}
		}
		return false
	}
	if !taken(id) {
		return id
	}
	for n := 1; ; n++ {
		if candidate := fmt.Sprintf("%s-%d", id, n); !taken(candidate) {
			return candidate
		}
	}
}

func (g *Graph) outgoing(id string) (Edge, bool) {
	for _, e := range g.edges {
		if e.Source == id {
			return e, true
		}
	}
	return Edge{}, false
}
