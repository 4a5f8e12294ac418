package flowcanvas

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddNode(t *testing.T) {
	g := newTestGraph()

	n := g.AddNode(NodeTypeMessage, Position{X: 10, Y: 20})

	assert.Equal(t, "node_1700000000000_0", n.ID)
	assert.Equal(t, NodeTypeMessage, n.Type)
	assert.Equal(t, Position{X: 10, Y: 20}, n.Position)
	assert.Equal(t, DefaultLabel, n.Data.Label)
	assert.False(t, n.Selected)

	nodes, edges := g.Len()
	assert.Equal(t, 1, nodes)
	assert.Equal(t, 0, edges)
}

// TestGraph_AddNode_RedrawsCollidingID verifies a drawn id that is already
// present is replaced by a fresh one.
func TestGraph_AddNode_RedrawsCollidingID(t *testing.T) {
	draws := []int{7, 7, 8}
	ids := &IDGenerator{
		now: func() time.Time { return testEpoch },
		rand: func(int) int {
			v := draws[0]
			draws = draws[1:]
			return v
		},
	}
	g := NewGraph(WithIDGenerator(ids))

	first := g.AddNode(NodeTypeMessage, Position{})
	second := g.AddNode(NodeTypeMessage, Position{})

	assert.Equal(t, "node_1700000000000_7", first.ID)
	assert.Equal(t, "node_1700000000000_8", second.ID)
}

func TestGraph_RemoveNode_CascadesEdges(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 3)
	connect(t, g, n[0].ID, n[1].ID)
	connect(t, g, n[1].ID, n[2].ID)

	g.RemoveNode(n[1].ID)

	snap := g.Snapshot()
	require.Len(t, snap.Nodes, 2)
	assert.Empty(t, snap.Edges)
	requireInvariants(t, snap)
}

func TestGraph_RemoveNode_Unknown(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 2)
	connect(t, g, n[0].ID, n[1].ID)

	g.RemoveNode("missing")

	nodes, edges := g.Len()
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 1, edges)
}

func TestGraph_UpdateNodeLabel_KeepsSelection(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 2)
	g.SelectNode(n[0].ID)

	g.UpdateNodeLabel(n[1].ID, "Bye")

	got, ok := g.Node(n[1].ID)
	require.True(t, ok)
	assert.Equal(t, "Bye", got.Data.Label)
	assert.False(t, got.Selected)

	sel, ok := g.Selected()
	require.True(t, ok)
	assert.Equal(t, n[0].ID, sel.ID)
}

func TestGraph_SetNodePosition(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 1)

	g.SetNodePosition(n[0].ID, Position{X: -5, Y: 42.5})
	g.SetNodePosition("missing", Position{X: 1})

	got, _ := g.Node(n[0].ID)
	assert.Equal(t, Position{X: -5, Y: 42.5}, got.Position)
}

func TestGraph_SelectNode_Exclusive(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 3)

	_, ok := g.SelectNode(n[0].ID)
	require.True(t, ok)
	sel, ok := g.SelectNode(n[2].ID)
	require.True(t, ok)
	assert.True(t, sel.Selected)

	count := 0
	for _, node := range g.Snapshot().Nodes {
		if node.Selected {
			count++
			assert.Equal(t, n[2].ID, node.ID)
		}
	}
	assert.Equal(t, 1, count)
}

func TestGraph_SelectNode_Unknown(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 2)
	g.SelectNode(n[1].ID)

	_, ok := g.SelectNode("missing")

	assert.False(t, ok)
	sel, ok := g.Selected()
	require.True(t, ok, "unknown id must not clear the selection")
	assert.Equal(t, n[1].ID, sel.ID)
}

func TestGraph_ClearSelection(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 2)
	g.SelectNode(n[0].ID)

	g.ClearSelection()

	_, ok := g.Selected()
	assert.False(t, ok)
}

func TestGraph_TryConnect(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 2)

	e, err := g.TryConnect(Connection{Source: n[0].ID, SourceHandle: "b", Target: n[1].ID, TargetHandle: "a"})
	require.NoError(t, err)

	assert.Equal(t, "reactflow__edge-"+n[0].ID+"b-"+n[1].ID+"a", e.ID)
	assert.Equal(t, n[0].ID, e.Source)
	assert.Equal(t, n[1].ID, e.Target)
	require.NotNil(t, e.SourceHandle)
	assert.Equal(t, "b", *e.SourceHandle)
	require.NotNil(t, e.TargetHandle)
	assert.Equal(t, "a", *e.TargetHandle)

	out, ok := g.OutgoingEdge(n[0].ID)
	require.True(t, ok)
	assert.Equal(t, e.ID, out.ID)
}

func TestGraph_TryConnect_AbsentHandles(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 2)

	e, err := g.TryConnect(Connection{Source: n[0].ID, Target: n[1].ID})
	require.NoError(t, err)

	assert.Nil(t, e.SourceHandle)
	assert.Nil(t, e.TargetHandle)
	assert.False(t, e.HasTargetHandle())
	assert.Equal(t, "reactflow__edge-"+n[0].ID+"-"+n[1].ID, e.ID)
}

func TestGraph_TryConnect_DuplicateSource(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 3)
	first := connect(t, g, n[0].ID, n[1].ID)
	g.SelectNode(n[2].ID)

	// An unpinned source is still a second outgoing edge.
	_, err := g.TryConnect(Connection{Source: n[0].ID, Target: n[2].ID, TargetHandle: "a"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectionRejected))
	var rejected *ConnectionRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, RejectDuplicateSource, rejected.Reason)
	assert.Equal(t, "Can not have more than one edge originating from the source node.", rejected.Message())

	snap := g.Snapshot()
	require.Len(t, snap.Edges, 1)
	assert.Equal(t, first.ID, snap.Edges[0].ID)
	_, selected := g.Selected()
	assert.False(t, selected, "rejection clears the selection")
}

func TestGraph_TryConnect_ManyIncoming(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 3)

	connect(t, g, n[0].ID, n[2].ID)
	connect(t, g, n[1].ID, n[2].ID)

	_, edges := g.Len()
	assert.Equal(t, 2, edges)
}

func TestGraph_TryConnect_UnknownNode(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 1)

	testCases := []struct {
		name string
		conn Connection
	}{
		{"unknown source", Connection{Source: "ghost", Target: n[0].ID}},
		{"unknown target", Connection{Source: n[0].ID, Target: "ghost"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.TryConnect(tc.conn)
			var rejected *ConnectionRejectedError
			require.True(t, errors.As(err, &rejected))
			assert.Equal(t, RejectUnknownNode, rejected.Reason)
		})
	}
	_, edges := g.Len()
	assert.Zero(t, edges)
}

func TestGraph_TryConnect_UnknownHandle(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 2)

	testCases := []struct {
		name string
		conn Connection
	}{
		{"source handle", Connection{Source: n[0].ID, SourceHandle: "zzz", Target: n[1].ID}},
		{"target handle", Connection{Source: n[0].ID, Target: n[1].ID, TargetHandle: "nope"}},
		{"target port used as source", Connection{Source: n[0].ID, SourceHandle: "a", Target: n[1].ID, TargetHandle: "a"}},
		{"source port used as target", Connection{Source: n[0].ID, SourceHandle: "b", Target: n[1].ID, TargetHandle: "b"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.TryConnect(tc.conn)
			var rejected *ConnectionRejectedError
			require.True(t, errors.As(err, &rejected))
			assert.Equal(t, RejectUnknownHandle, rejected.Reason)
			assert.Equal(t, "Can not connect through a handle the node does not have.", rejected.Message())
		})
	}
	_, edges := g.Len()
	assert.Zero(t, edges)
}

// TestGraph_TryConnect_UniqueEdgeIDs covers two connections whose derived ids
// coincide: "a" with handle "b" and a node named "ab" without one.
func TestGraph_TryConnect_UniqueEdgeIDs(t *testing.T) {
	g := newTestGraph()
	g.ReplaceAll([]Node{msgNode("a"), msgNode("ab"), msgNode("t")}, nil)

	first, err := g.TryConnect(Connection{Source: "a", SourceHandle: "b", Target: "t"})
	require.NoError(t, err)
	second, err := g.TryConnect(Connection{Source: "ab", Target: "t"})
	require.NoError(t, err)

	assert.Equal(t, "reactflow__edge-ab-t", first.ID)
	assert.Equal(t, "reactflow__edge-ab-t-1", second.ID)

	g.RemoveEdge(second.ID)

	_, ok := g.OutgoingEdge("a")
	assert.True(t, ok, "removing the second edge keeps the first")
	_, ok = g.OutgoingEdge("ab")
	assert.False(t, ok)
	requireInvariants(t, g.Snapshot())
}

func TestGraph_TryConnect_SelfLoop(t *testing.T) {
	t.Run("allowed by default", func(t *testing.T) {
		g := newTestGraph()
		n := addNodes(t, g, 1)
		_, err := g.TryConnect(Connection{Source: n[0].ID, Target: n[0].ID})
		assert.NoError(t, err)
	})

	t.Run("rejected when disabled", func(t *testing.T) {
		g := newTestGraph(WithSelfLoops(false))
		n := addNodes(t, g, 1)
		_, err := g.TryConnect(Connection{Source: n[0].ID, Target: n[0].ID})
		var rejected *ConnectionRejectedError
		require.True(t, errors.As(err, &rejected))
		assert.Equal(t, RejectSelfLoop, rejected.Reason)
	})
}

func TestGraph_RemoveEdge(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 3)
	e := connect(t, g, n[0].ID, n[1].ID)

	g.RemoveEdge("missing")
	g.RemoveEdge(e.ID)

	_, ok := g.Edge(e.ID)
	assert.False(t, ok)
	// The source may connect again once its edge is gone.
	connect(t, g, n[0].ID, n[2].ID)
}

func TestGraph_ReplaceAll(t *testing.T) {
	g := newTestGraph()
	addNodes(t, g, 3)

	h := "a"
	nodes := []Node{{ID: "x", Type: NodeTypeMessage, Data: NodeData{Label: "X"}}}
	edges := []Edge{{ID: "e", Source: "x", Target: "x", TargetHandle: &h}}
	g.ReplaceAll(nodes, edges)

	nodes[0].Data.Label = "mutated"
	h = "mutated"

	snap := g.Snapshot()
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, "X", snap.Nodes[0].Data.Label)
	require.Len(t, snap.Edges, 1)
	assert.Equal(t, "a", *snap.Edges[0].TargetHandle)
}

func TestGraph_Snapshot_IsDeepCopy(t *testing.T) {
	g := newTestGraph()
	n := addNodes(t, g, 2)
	connect(t, g, n[0].ID, n[1].ID)

	snap := g.Snapshot()
	snap.Nodes[0].Data.Label = "changed"
	*snap.Edges[0].TargetHandle = "z"

	again := g.Snapshot()
	assert.Equal(t, DefaultLabel, again.Nodes[0].Data.Label)
	assert.Equal(t, "a", *again.Edges[0].TargetHandle)
}

// TestGraph_Invariants_RandomOps drives random mutations and checks the
// graph rules after each one.
func TestGraph_Invariants_RandomOps(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g := newTestGraph()

	pick := func() string {
		snap := g.Snapshot()
		if len(snap.Nodes) == 0 || r.IntN(10) == 0 {
			return "ghost"
		}
		return snap.Nodes[r.IntN(len(snap.Nodes))].ID
	}

	for i := 0; i < 2000; i++ {
		switch r.IntN(7) {
		case 0, 1:
			g.AddNode(NodeTypeMessage, Position{X: r.Float64() * 500, Y: r.Float64() * 500})
		case 2:
			g.RemoveNode(pick())
		case 3:
			g.SelectNode(pick())
		case 4:
			g.ClearSelection()
		case 5, 6:
			_, _ = g.TryConnect(Connection{Source: pick(), SourceHandle: "b", Target: pick(), TargetHandle: "a"})
		}
		requireInvariants(t, g.Snapshot())
	}
}
