package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
)

// APIResponse is the envelope of every response body.
type APIResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&APIResponse{
		Code:    status,
		Message: "ok",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeErrorData(w, status, message, nil)
}

func writeErrorData(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&APIResponse{
		Code:    status,
		Message: message,
		Data:    data,
	})
}

// validationDetail is the body data of a save blocked by validation.
type validationDetail struct {
	Reasons          []flowcanvas.ValidationReason `json:"reasons"`
	UnconnectedNodes []string                      `json:"unconnectedNodes,omitempty"`
}

// writeFlowError maps engine errors onto statuses. Messages are the ones
// shown to the user.
func writeFlowError(w http.ResponseWriter, err error) {
	var rejected *flowcanvas.ConnectionRejectedError
	var invalid *flowcanvas.ValidationError

	switch {
	case errors.As(err, &rejected):
		writeErrorData(w, http.StatusConflict, rejected.Message(), map[string]string{"reason": string(rejected.Reason)})
	case errors.As(err, &invalid):
		res := flowcanvas.ValidationResult{Reasons: invalid.Reasons, UnconnectedNodes: invalid.UnconnectedNodes}
		writeErrorData(w, http.StatusUnprocessableEntity, res.Message(), validationDetail{
			Reasons:          invalid.Reasons,
			UnconnectedNodes: invalid.UnconnectedNodes,
		})
	case errors.Is(err, flowcanvas.ErrNodeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, flowcanvas.ErrUnknownNodeType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, flowcanvas.ErrSaveInProgress):
		writeError(w, http.StatusConflict, flowcanvas.MessageSaveBusy)
	case errors.Is(err, flowcanvas.ErrPersistence):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
