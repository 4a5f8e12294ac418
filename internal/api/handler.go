package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/event"
)

type flowHandler struct {
	session *flowcanvas.Session
	notices *event.Recorder
}

// flowState is the body of GET /api/v1/flow.
type flowState struct {
	Nodes      []flowcanvas.Node   `json:"nodes"`
	Edges      []flowcanvas.Edge   `json:"edges"`
	Viewport   flowcanvas.Viewport `json:"viewport"`
	SelectedID string              `json:"selectedId,omitempty"`
	Label      string              `json:"label"`
}

// RegisterRoutes mounts the canvas gestures.
func (h *flowHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/flow", func(r chi.Router) {
		r.Get("/", h.GetFlow)
		r.Get("/validation", h.Validate)
		r.Post("/save", h.Save)
		r.Post("/reset", h.Reset)

		r.Post("/nodes", h.DropNode)
		r.Put("/nodes/{id}/position", h.MoveNode)
		r.Post("/nodes/{id}/select", h.SelectNode)
		r.Delete("/nodes/{id}", h.RemoveNode)

		r.Post("/edges", h.Connect)
		r.Delete("/edges/{id}", h.RemoveEdge)

		r.Post("/selection/clear", h.ClearSelection)
		r.Put("/label", h.SetLabel)
		r.Put("/viewport", h.SetViewport)
	})
	r.Get("/api/v1/notices", h.DrainNotices)
}

func (h *flowHandler) state() flowState {
	snap := h.session.Snapshot()
	return flowState{
		Nodes:      snap.Nodes,
		Edges:      snap.Edges,
		Viewport:   h.session.Viewport(),
		SelectedID: h.session.SelectedID(),
		Label:      h.session.Label(),
	}
}

func (h *flowHandler) GetFlow(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.state())
}

func (h *flowHandler) Validate(w http.ResponseWriter, _ *http.Request) {
	snap := h.session.Snapshot()
	res := flowcanvas.ValidateForSave(snap.Nodes, snap.Edges)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":               res.OK(),
		"reasons":          res.Reasons,
		"unconnectedNodes": res.UnconnectedNodes,
		"message":          res.Message(),
	})
}

func (h *flowHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Save(r.Context()); err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": flowcanvas.MessageSaved})
}

func (h *flowHandler) Reset(w http.ResponseWriter, r *http.Request) {
	restored, err := h.session.Reset(r.Context())
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restored": restored, "flow": h.state()})
}

func (h *flowHandler) DropNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type     string              `json:"type"`
		Position flowcanvas.Position `json:"position"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = string(flowcanvas.NodeTypeMessage)
	}
	t, err := flowcanvas.ParseNodeType(req.Type)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	n, err := h.session.DropNode(t, req.Position)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *flowHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var pos flowcanvas.Position
	if !decode(w, r, &pos) {
		return
	}
	if err := h.session.MoveNode(chi.URLParam(r, "id"), pos); err != nil {
		writeFlowError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *flowHandler) SelectNode(w http.ResponseWriter, r *http.Request) {
	n, err := h.session.ClickNode(chi.URLParam(r, "id"))
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"node": n, "label": h.session.Label()})
}

func (h *flowHandler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	h.session.RemoveNode(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *flowHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var c flowcanvas.Connection
	if !decode(w, r, &c) {
		return
	}
	if c.Source == "" || c.Target == "" {
		writeError(w, http.StatusBadRequest, "source and target are required")
		return
	}
	e, err := h.session.Connect(r.Context(), c)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *flowHandler) RemoveEdge(w http.ResponseWriter, r *http.Request) {
	h.session.RemoveEdge(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *flowHandler) ClearSelection(w http.ResponseWriter, _ *http.Request) {
	h.session.ClickPane()
	w.WriteHeader(http.StatusNoContent)
}

func (h *flowHandler) SetLabel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.session.SetLabel(req.Value)
	writeJSON(w, http.StatusOK, map[string]string{"label": h.session.Label()})
}

func (h *flowHandler) SetViewport(w http.ResponseWriter, r *http.Request) {
	var vp flowcanvas.Viewport
	if !decode(w, r, &vp) {
		return
	}
	h.session.SetViewport(vp)
	w.WriteHeader(http.StatusNoContent)
}

func (h *flowHandler) DrainNotices(w http.ResponseWriter, _ *http.Request) {
	events := h.notices.Drain()
	if events == nil {
		events = []event.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}
