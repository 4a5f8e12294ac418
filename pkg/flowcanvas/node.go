package flowcanvas

import (
	"fmt"
	"slices"
)

// DefaultLabel is the label a freshly dropped node starts with.
const DefaultLabel = "Test Message"

// NodeType selects a node's behavior and the handles it exposes.
// It is a closed set; use ParseNodeType to convert untrusted input.
type NodeType string

const (
	// NodeTypeMessage is a single "send message" step.
	NodeTypeMessage NodeType = "message"
)

// legacyTypeAliases maps type tags written by older canvases onto current types.
var legacyTypeAliases = map[string]NodeType{
	"textnode": NodeTypeMessage,
}

// ParseNodeType converts a wire tag into a NodeType.
// Returns ErrUnknownNodeType for tags outside the closed set.
func ParseNodeType(s string) (NodeType, error) {
	switch NodeType(s) {
	case NodeTypeMessage:
		return NodeTypeMessage, nil
	}
	if t, ok := legacyTypeAliases[s]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNodeType, s)
}

// Handles describes the connection ports a node type exposes.
type Handles struct {
	Targets []string
	Sources []string
}

// Handles returns the ports declared for the node type.
func (t NodeType) Handles() Handles {
	switch t {
	case NodeTypeMessage:
		return Handles{Targets: []string{"a"}, Sources: []string{"b"}}
	default:
		return Handles{}
	}
}

// AcceptsSource reports whether an edge may leave through the named handle.
// The empty handle is the node body and is always accepted.
func (h Handles) AcceptsSource(handle string) bool {
	return handle == "" || slices.Contains(h.Sources, handle)
}

// AcceptsTarget reports whether an edge may arrive through the named handle.
// The empty handle is the node body and is always accepted.
func (h Handles) AcceptsTarget(handle string) bool {
	return handle == "" || slices.Contains(h.Targets, handle)
}

// Valid reports whether t is a member of the closed set.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeMessage:
		return true
	default:
		return false
	}
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the user-editable content of a node.
type NodeData struct {
	Label string `json:"label"`
}

// Node is a placed step in the flow.
// The ID is assigned at creation and never changes.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
	Selected bool     `json:"selected"`
}
