package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/session"
)

// StatusSource exposes the live session.
type StatusSource interface {
	Status() session.Snapshot
	SetEnabled(enabled bool)
}

// StateHandler serves the live session state and the gesture bindings.
type StateHandler struct {
	source StatusSource
}

// NewStateHandler creates a new StateHandler over source.
func NewStateHandler(source StatusSource) *StateHandler {
	return &StateHandler{source: source}
}

type bindingResponse struct {
	Name    string `json:"name"`
	Vector  string `json:"vector"`
	Action  string `json:"action"`
	Guarded bool   `json:"guarded"`
}

type stateResponse struct {
	Session  session.Snapshot  `json:"session"`
	Bindings []bindingResponse `json:"bindings"`
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// Get handles GET /api/state.
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	bindings := control.Bindings()
	resp := stateResponse{
		Session:  h.source.Status(),
		Bindings: make([]bindingResponse, len(bindings)),
	}
	for i, b := range bindings {
		resp.Bindings[i] = bindingResponse{
			Name:    b.Name,
			Vector:  b.Vector.String(),
			Action:  b.Action.String(),
			Guarded: b.Guarded(),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetEnabled handles PUT /api/enabled with a body of {"enabled": bool}.
func (h *StateHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	h.source.SetEnabled(*req.Enabled)
	writeJSON(w, http.StatusOK, h.source.Status())
}
