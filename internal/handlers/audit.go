package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

type auditEventsResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Events  []*models.AuditEvent `json:"events"`
	Total   int                  `json:"total"`
}

type logAuditRequest struct {
	Event         string                 `json:"event"`
	ResourceID    string                 `json:"resource_id"`
	ResourceType  string                 `json:"resource_type"`
	Context       string                 `json:"context,omitempty"`
	Action        string                 `json:"action"`
	PreviousState map[string]interface{} `json:"previous_state,omitempty"`
	NewState      map[string]interface{} `json:"new_state,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// LogAuditEvent lets collaborators append events to the shared trail. The
// actor is always taken from the session, never from the body.
func (h *Handler) LogAuditEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req logAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Event == "" || req.ResourceID == "" || req.ResourceType == "" || req.Action == "" {
		writeError(w, http.StatusBadRequest, "event, resource_id, resource_type and action are required")
		return
	}

	h.Audit.Log(r.Context(), &models.AuditEvent{
		Event:         req.Event,
		ActorID:       sess.ActorID,
		ResourceID:    req.ResourceID,
		ResourceType:  req.ResourceType,
		Context:       req.Context,
		Action:        req.Action,
		PreviousState: req.PreviousState,
		NewState:      req.NewState,
		Metadata:      req.Metadata,
	})

	// Logging is best-effort by design; acceptance is all we can promise.
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"success": true})
}

// QueryAuditEvents looks events up by resource, actor or context tag.
func (h *Handler) QueryAuditEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireSession(w, r); !ok {
		return
	}

	q := r.URL.Query()
	var (
		events []*models.AuditEvent
		err    error
	)
	switch {
	case q.Get("resource_id") != "" && q.Get("resource_type") != "":
		events, err = h.Audit.GetByResource(r.Context(), q.Get("resource_type"), q.Get("resource_id"))
	case q.Get("actor_id") != "":
		events, err = h.Audit.GetByActor(r.Context(), q.Get("actor_id"))
	case q.Get("context") != "":
		events, err = h.Audit.GetByContext(r.Context(), q.Get("context"))
	default:
		writeError(w, http.StatusBadRequest, "resource_type+resource_id, actor_id or context is required")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []*models.AuditEvent{}
	}

	writeJSON(w, http.StatusOK, auditEventsResponse{Success: true, Events: events, Total: len(events)})
}
