package flowcanvas

// Viewport is the canvas pan and zoom, persisted for restore fidelity.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is used when a stored record carries no viewport.
var DefaultViewport = Viewport{X: 0, Y: 0, Zoom: 1}

// Snapshot is a deep copy of the graph's collections.
// Mutating a Snapshot never affects the graph it came from.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	nodes := make([]Node, len(s.Nodes))
	copy(nodes, s.Nodes)
	edges := make([]Edge, len(s.Edges))
	for i, e := range s.Edges {
		edges[i] = cloneEdge(e)
	}
	return Snapshot{Nodes: nodes, Edges: edges}
}

// Flow is a snapshot together with its viewport: the unit of persistence.
type Flow struct {
	Snapshot
	Viewport Viewport `json:"viewport"`

	// Repairs counts records dropped or corrected while restoring.
	Repairs int `json:"-"`
}
