package flowcanvas

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/store"
)

var testEpoch = time.UnixMilli(1_700_000_000_000)

// seqIDs returns a generator with a frozen clock whose suffixes count up
// from 0, so ids are node_1700000000000_0, node_1700000000000_1, ...
func seqIDs() *IDGenerator {
	var mu sync.Mutex
	n := 0
	return &IDGenerator{
		now: func() time.Time { return testEpoch },
		rand: func(limit int) int {
			mu.Lock()
			defer mu.Unlock()
			v := n % limit
			n++
			return v
		},
	}
}

func newTestGraph(opts ...GraphOption) *Graph {
	return NewGraph(append([]GraphOption{WithIDGenerator(seqIDs())}, opts...)...)
}

// addNodes drops n message nodes and returns them in order.
func addNodes(t *testing.T, g *Graph, n int) []Node {
	t.Helper()
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = g.AddNode(NodeTypeMessage, Position{X: float64(i * 100), Y: 0})
	}
	return nodes
}

func connect(t *testing.T, g *Graph, src, tgt string) Edge {
	t.Helper()
	e, err := g.TryConnect(Connection{Source: src, SourceHandle: "b", Target: tgt, TargetHandle: "a"})
	require.NoError(t, err)
	return e
}

// requireInvariants checks the graph rules on a snapshot.
func requireInvariants(t *testing.T, s Snapshot) {
	t.Helper()

	present := make(map[string]bool, len(s.Nodes))
	selected := 0
	for _, n := range s.Nodes {
		require.False(t, present[n.ID], "duplicate node id %s", n.ID)
		present[n.ID] = true
		if n.Selected {
			selected++
		}
	}
	require.LessOrEqual(t, selected, 1, "more than one node selected")

	outgoing := make(map[string]int)
	edgeIDs := make(map[string]bool, len(s.Edges))
	for _, e := range s.Edges {
		require.False(t, edgeIDs[e.ID], "duplicate edge id %s", e.ID)
		edgeIDs[e.ID] = true
		require.True(t, present[e.Source], "edge %s has dangling source", e.ID)
		require.True(t, present[e.Target], "edge %s has dangling target", e.ID)
		outgoing[e.Source]++
		require.LessOrEqual(t, outgoing[e.Source], 1, "node %s has more than one outgoing edge", e.Source)
	}
}

// faultyStore is a store.Store whose calls fail or block on demand.
type faultyStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	putErr  error
	getErr  error
	block   chan struct{} // when set, Put waits on it
	entered chan struct{} // signalled when a blocked Put starts
	puts    int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{data: make(map[string][]byte)}
}

func (f *faultyStore) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	block, entered, err := f.block, f.entered, f.putErr
	f.mu.Unlock()

	if block != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *faultyStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (f *faultyStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *faultyStore) Close() error { return nil }

func (f *faultyStore) set(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = []byte(value)
}

var errDiskFull = errors.New("disk full")
