package flowcanvas

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// idSuffixRange bounds the random suffix appended to each timestamp.
const idSuffixRange = 1000

// IDGenerator produces node identifiers of the form node_<millis>_<n>.
// The timestamp part never goes backwards, even if the wall clock does.
// IDs sort by time only coarsely; callers must not rely on lexical order.
//
// IDGenerator is safe for concurrent use.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	rand func(n int) int
	last int64
}

// NewIDGenerator creates a generator using the wall clock and math/rand.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now, rand: rand.IntN}
}

// Next returns a fresh identifier.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms < g.last {
		ms = g.last
	}
	g.last = ms
	return fmt.Sprintf("node_%d_%d", ms, g.rand(idSuffixRange))
}

var defaultIDs = NewIDGenerator()

// NextID returns an identifier from the process-wide generator.
func NextID() string {
	return defaultIDs.Next()
}
