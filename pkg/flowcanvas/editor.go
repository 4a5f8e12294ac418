package flowcanvas

import (
	"fmt"
	"sync"
)

// Command is an instruction processed by Editor.Dispatch.
type Command interface {
	command()
}

// SelectNode makes a node the one under edit.
type SelectNode struct {
	ID string
}

// SetLabel changes the label field of the node under edit.
type SetLabel struct {
	Value string
}

// ClearSelection leaves edit mode.
type ClearSelection struct{}

func (SelectNode) command()     {}
func (SetLabel) command()       {}
func (ClearSelection) command() {}

// Editor keeps a single label field in step with the selected node.
//
// Selecting a node loads its label into the field. Changing the field
// writes the new label to the node before the call returns. Clearing the
// selection empties the field and leaves the nodes alone.
//
// The graph owns the selection. Whenever it has moved since the editor last
// looked (a rejected connection, a removed node), the editor follows it
// before reading or writing the field.
type Editor struct {
	mu       sync.Mutex
	graph    *Graph
	selected string
	label    string
}

// NewEditor creates an editor over g, adopting g's current selection.
func NewEditor(g *Graph) *Editor {
	e := &Editor{graph: g}
	e.Sync()
	return e
}

// Dispatch processes a command synchronously.
func (e *Editor) Dispatch(cmd Command) error {
	switch c := cmd.(type) {
	case SelectNode:
		if _, ok := e.Select(c.ID); !ok {
			return fmt.Errorf("select %q: %w", c.ID, ErrNodeNotFound)
		}
		return nil
	case SetLabel:
		e.SetLabel(c.Value)
		return nil
	case ClearSelection:
		e.Clear()
		return nil
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
}

// Select selects a node in the graph and loads its label.
// Returns false if the node does not exist; the editor is unchanged.
func (e *Editor) Select(id string) (Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := e.graph.SelectNode(id)
	if !ok {
		return Node{}, false
	}
	e.selected = n.ID
	e.label = n.Data.Label
	return n, true
}

// SetLabel updates the field and, if a node is selected, the node's label.
func (e *Editor) SetLabel(value string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.follow()
	e.label = value
	if e.selected != "" {
		e.graph.UpdateNodeLabel(e.selected, value)
	}
}

// Clear deselects every node and empties the field.
func (e *Editor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.graph.ClearSelection()
	e.selected = ""
	e.label = ""
}

// Sync re-reads the selection from the graph. Call it after the graph's
// selection changed behind the editor's back, e.g. a rejected connection
// or a ReplaceAll.
func (e *Editor) Sync() {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := e.graph.Selected()
	if !ok {
		e.selected = ""
		e.label = ""
		return
	}
	e.selected = n.ID
	e.label = n.Data.Label
}

// Label returns the current field value.
func (e *Editor) Label() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.follow()
	return e.label
}

// SelectedID returns the id of the node under edit, or "".
func (e *Editor) SelectedID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.follow()
	return e.selected
}

// follow adopts the graph's selection if it differs from the cached one.
// The field keeps its value while the selection is unchanged.
func (e *Editor) follow() {
	n, ok := e.graph.Selected()
	if n.ID == e.selected {
		return
	}
	e.selected = n.ID
	e.label = ""
	if ok {
		e.label = n.Data.Label
	}
}
