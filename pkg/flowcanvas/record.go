package flowcanvas

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

var recordValidator = validator.New(validator.WithRequiredStructEnabled())

var errEmptyRecord = errors.New("record is empty")

// flowRecord is the stored shape before each section is decoded on its own,
// so a corrupt section cannot take the others down with it.
type flowRecord struct {
	Nodes    json.RawMessage `json:"nodes"`
	Edges    json.RawMessage `json:"edges"`
	Viewport json.RawMessage `json:"viewport"`
}

type nodeRecord struct {
	ID       string    `json:"id" validate:"required"`
	Type     string    `json:"type" validate:"required"`
	Position *Position `json:"position"`
	Data     *NodeData `json:"data"`
	Selected bool      `json:"selected"`
}

type edgeRecord struct {
	ID           string  `json:"id"`
	Source       string  `json:"source" validate:"required"`
	Target       string  `json:"target" validate:"required"`
	SourceHandle *string `json:"sourceHandle"`
	TargetHandle *string `json:"targetHandle"`
}

type viewportRecord struct {
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Zoom *float64 `json:"zoom"`
}

// repairFunc is told about every record dropped or corrected.
type repairFunc func(kind, id, reason string)

// encodeFlow produces the stored record.
func encodeFlow(s Snapshot, vp Viewport) ([]byte, error) {
	s = s.Clone()
	return json.Marshal(struct {
		Nodes    []Node   `json:"nodes"`
		Edges    []Edge   `json:"edges"`
		Viewport Viewport `json:"viewport"`
	}{s.Nodes, s.Edges, vp})
}

// decodeFlow parses a stored record and repairs it into a flow that honors
// the graph invariants. Only a record that is not a JSON object at all is
// an error; damaged sections and elements are dropped and reported.
func decodeFlow(data []byte, report repairFunc) (Flow, error) {
	if isAbsent(data) {
		return Flow{}, errEmptyRecord
	}
	var rec flowRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Flow{}, err
	}

	var f Flow
	repairs := 0
	note := func(kind, id, reason string) {
		repairs++
		if report != nil {
			report(kind, id, reason)
		}
	}

	f.Viewport = decodeViewport(rec.Viewport, note)
	f.Nodes = decodeNodes(rec.Nodes, note)
	f.Edges = decodeEdges(rec.Edges, f.Nodes, note)
	f.Repairs = repairs
	return f, nil
}

func decodeViewport(raw json.RawMessage, note repairFunc) Viewport {
	vp := DefaultViewport
	if isAbsent(raw) {
		return vp
	}
	var rec viewportRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		note("viewport", "", "undecodable")
		return vp
	}
	if rec.X != nil {
		vp.X = *rec.X
	}
	if rec.Y != nil {
		vp.Y = *rec.Y
	}
	if rec.Zoom != nil {
		vp.Zoom = *rec.Zoom
	}
	return vp
}

func decodeNodes(raw json.RawMessage, note repairFunc) []Node {
	nodes := []Node{}
	elems, ok := decodeArray(raw, "nodes", note)
	if !ok {
		return nodes
	}

	seen := make(map[string]bool, len(elems))
	selected := false
	for _, elem := range elems {
		var rec nodeRecord
		if err := json.Unmarshal(elem, &rec); err != nil {
			note("node", "", "undecodable")
			continue
		}
		if err := recordValidator.Struct(rec); err != nil {
			note("node", rec.ID, "invalid: "+err.Error())
			continue
		}
		t, err := ParseNodeType(rec.Type)
		if err != nil {
			note("node", rec.ID, "unknown type "+rec.Type)
			continue
		}
		if seen[rec.ID] {
			note("node", rec.ID, "duplicate id")
			continue
		}
		seen[rec.ID] = true

		n := Node{ID: rec.ID, Type: t, Selected: rec.Selected}
		if rec.Position != nil {
			n.Position = *rec.Position
		} else {
			note("node", rec.ID, "missing position")
		}
		if rec.Data != nil {
			n.Data = *rec.Data
		} else {
			note("node", rec.ID, "missing data")
		}
		if n.Selected && selected {
			n.Selected = false
			note("node", rec.ID, "second selection")
		}
		selected = selected || n.Selected
		nodes = append(nodes, n)
	}
	return nodes
}

func decodeEdges(raw json.RawMessage, nodes []Node, note repairFunc) []Edge {
	edges := []Edge{}
	elems, ok := decodeArray(raw, "edges", note)
	if !ok {
		return edges
	}

	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}
	hasOutgoing := make(map[string]bool)
	seen := make(map[string]bool, len(elems))

	for _, elem := range elems {
		var rec edgeRecord
		if err := json.Unmarshal(elem, &rec); err != nil {
			note("edge", "", "undecodable")
			continue
		}
		if err := recordValidator.Struct(rec); err != nil {
			note("edge", rec.ID, "invalid: "+err.Error())
			continue
		}
		if !present[rec.Source] || !present[rec.Target] {
			note("edge", rec.ID, "dangling endpoint")
			continue
		}
		if hasOutgoing[rec.Source] {
			note("edge", rec.ID, "second outgoing edge")
			continue
		}

		e := Edge{
			ID:           rec.ID,
			Source:       rec.Source,
			Target:       rec.Target,
			SourceHandle: rec.SourceHandle,
			TargetHandle: rec.TargetHandle,
		}
		if e.ID == "" {
			e.ID = EdgeID(Connection{
				Source:       e.Source,
				SourceHandle: deref(e.SourceHandle),
				Target:       e.Target,
				TargetHandle: deref(e.TargetHandle),
			})
			note("edge", e.ID, "missing id")
		}
		if seen[e.ID] {
			note("edge", e.ID, "duplicate id")
			continue
		}
		seen[e.ID] = true
		hasOutgoing[e.Source] = true
		edges = append(edges, e)
	}
	return edges
}

// decodeArray splits a JSON array into its elements.
// Absent or null sections are empty; anything else that is not an array is reported.
func decodeArray(raw json.RawMessage, section string, note repairFunc) ([]json.RawMessage, bool) {
	if isAbsent(raw) {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		note(section, "", "not an array")
		return nil, false
	}
	return elems, true
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
