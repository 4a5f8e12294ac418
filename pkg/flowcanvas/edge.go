package flowcanvas

// Connection is a requested edge, as reported by a connect gesture.
// Empty handles mean the gesture did not land on a named port.
type Connection struct {
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Edge is a directed connection between two nodes.
// A nil handle is absent; it serializes as null.
type Edge struct {
	ID           string  `json:"id"`
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	SourceHandle *string `json:"sourceHandle"`
	TargetHandle *string `json:"targetHandle"`
}

// HasTargetHandle reports whether the edge is pinned to a named target port.
func (e Edge) HasTargetHandle() bool {
	return e.TargetHandle != nil && *e.TargetHandle != ""
}

// Touches reports whether the edge has nodeID at either end.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// EdgeID derives the canonical edge identifier for a connection.
// The format matches the one written by the canvas so stored flows round-trip.
func EdgeID(c Connection) string {
	return "reactflow__edge-" + c.Source + c.SourceHandle + "-" + c.Target + c.TargetHandle
}

// newEdge builds an edge from a connection, turning empty handles into absent ones.
func newEdge(c Connection) Edge {
	return Edge{
		ID:           EdgeID(c),
		Source:       c.Source,
		Target:       c.Target,
		SourceHandle: handlePtr(c.SourceHandle),
		TargetHandle: handlePtr(c.TargetHandle),
	}
}

func handlePtr(h string) *string {
	if h == "" {
		return nil
	}
	return &h
}

func cloneEdge(e Edge) Edge {
	if e.SourceHandle != nil {
		h := *e.SourceHandle
		e.SourceHandle = &h
	}
	if e.TargetHandle != nil {
		h := *e.TargetHandle
		e.TargetHandle = &h
	}
	return e
}
