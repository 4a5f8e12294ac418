package flowcanvas

// ValidationReason names one way a graph can fail to be saveable.
type ValidationReason string

const (
	// ReasonAmbiguousTarget means more than one edge lacks a target handle.
	ReasonAmbiguousTarget ValidationReason = "ambiguous-target"

	// ReasonUnconnectedNode means some node has no incident edge.
	ReasonUnconnectedNode ValidationReason = "unconnected-node"
)

// saveRejectedMessage is the single notice shown for any validation failure.
const saveRejectedMessage = "More than one node has an empty target point or there are unconnected nodes."

// ValidationResult is the outcome of ValidateForSave.
type ValidationResult struct {
	Reasons          []ValidationReason
	UnconnectedNodes []string
}

// OK reports whether the graph may be saved.
func (r ValidationResult) OK() bool {
	return len(r.Reasons) == 0
}

// Err returns a *ValidationError, or nil when the result passed.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Reasons: r.Reasons, UnconnectedNodes: r.UnconnectedNodes}
}

// Message returns the user-facing text for a failed result, or "".
func (r ValidationResult) Message() string {
	if r.OK() {
		return ""
	}
	return saveRejectedMessage
}

// ValidateForSave checks that a flow forms one fully wired structure.
//
// Graphs with at most one node always pass. Larger graphs fail when more
// than one edge has no target handle, and independently when any node has
// no incident edge. Both failures are reported if both hold.
func ValidateForSave(nodes []Node, edges []Edge) ValidationResult {
	var res ValidationResult
	if len(nodes) <= 1 {
		return res
	}

	unpinned := 0
	incident := make(map[string]bool, len(nodes))
	for _, e := range edges {
		if !e.HasTargetHandle() {
			unpinned++
		}
		incident[e.Source] = true
		incident[e.Target] = true
	}

	if unpinned > 1 {
		res.Reasons = append(res.Reasons, ReasonAmbiguousTarget)
	}
	for _, n := range nodes {
		if !incident[n.ID] {
			res.UnconnectedNodes = append(res.UnconnectedNodes, n.ID)
		}
	}
	if len(res.UnconnectedNodes) > 0 {
		res.Reasons = append(res.Reasons, ReasonUnconnectedNode)
	}
	return res
}
