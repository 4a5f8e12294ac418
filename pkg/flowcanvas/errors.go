package flowcanvas

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for graph mutation.
var (
	// ErrConnectionRejected indicates TryConnect declined to create an edge.
	ErrConnectionRejected = errors.New("connection rejected")

	// ErrUnknownNodeType indicates a node type tag outside the supported set.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrNodeNotFound indicates an operation named a node that is not in the graph.
	ErrNodeNotFound = errors.New("node not found")
)

// Sentinel errors for validation and persistence.
var (
	// ErrValidationFailed indicates the graph is not in a saveable shape.
	ErrValidationFailed = errors.New("flow validation failed")

	// ErrPersistence indicates the durable store could not be read or written.
	ErrPersistence = errors.New("persistence failed")

	// ErrSaveInProgress indicates a save was attempted while another was running.
	ErrSaveInProgress = fmt.Errorf("%w: save already in progress", ErrPersistence)

	// ErrMalformedState indicates the stored record could not be decoded.
	ErrMalformedState = errors.New("malformed persisted state")
)

// RejectReason names why a connection was declined.
type RejectReason string

const (
	// RejectDuplicateSource means an edge already leaves the source node.
	RejectDuplicateSource RejectReason = "duplicate-source"

	// RejectUnknownNode means the source or target is not in the graph.
	RejectUnknownNode RejectReason = "unknown-node"

	// RejectSelfLoop means source and target are the same node and self-loops are disabled.
	RejectSelfLoop RejectReason = "self-loop"

	// RejectUnknownHandle means a named handle is not declared by the node's type.
	RejectUnknownHandle RejectReason = "unknown-handle"
)

// ConnectionRejectedError describes a declined TryConnect.
type ConnectionRejectedError struct {
	Reason RejectReason
	Source string
	Target string
}

// Error implements the error interface.
func (e *ConnectionRejectedError) Error() string {
	return fmt.Sprintf("connection %s -> %s rejected: %s", e.Source, e.Target, e.Reason)
}

// Unwrap returns ErrConnectionRejected for errors.Is support.
func (e *ConnectionRejectedError) Unwrap() error {
	return ErrConnectionRejected
}

// Message returns the text shown to the user.
func (e *ConnectionRejectedError) Message() string {
	switch e.Reason {
	case RejectDuplicateSource:
		return "Can not have more than one edge originating from the source node."
	case RejectUnknownNode:
		return "Can not connect to a node that does not exist."
	case RejectSelfLoop:
		return "Can not connect a node to itself."
	case RejectUnknownHandle:
		return "Can not connect through a handle the node does not have."
	default:
		return "Connection rejected."
	}
}

// ValidationError reports why a graph cannot be saved.
type ValidationError struct {
	// Reasons lists every failing condition, in a stable order.
	Reasons []ValidationReason
	// UnconnectedNodes holds the ids of nodes with no incident edge.
	UnconnectedNodes []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = string(r)
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(parts, ", "))
}

// Unwrap returns ErrValidationFailed for errors.Is support.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Has reports whether reason is among the failures.
func (e *ValidationError) Has(reason ValidationReason) bool {
	for _, r := range e.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// PersistenceError wraps a store failure during save or restore.
type PersistenceError struct {
	// Op is "save" or "restore".
	Op string
	// Key is the store key involved.
	Key string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is makes every PersistenceError match ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// MalformedStateError describes a stored record that could not be decoded.
// Restore recovers from it; it is reported, never returned.
type MalformedStateError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *MalformedStateError) Error() string {
	return fmt.Sprintf("%s under %q: %v", ErrMalformedState, e.Key, e.Err)
}

// Unwrap returns the decode error.
func (e *MalformedStateError) Unwrap() error {
	return e.Err
}

// Is makes every MalformedStateError match ErrMalformedState.
func (e *MalformedStateError) Is(target error) bool {
	return target == ErrMalformedState
}
