package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

type privacyResponse struct {
	Success  bool                    `json:"success"`
	Message  string                  `json:"message,omitempty"`
	Settings *models.PrivacySettings `json:"settings,omitempty"`
}

type eraseResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Report  *models.EraseReport `json:"report,omitempty"`
}

// GetPrivacySettings returns the caller's settings, creating defaults on
// first read.
func (h *Handler) GetPrivacySettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	settings, err := h.Privacy.GetSettings(r.Context(), sess.ActorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, privacyResponse{Success: true, Settings: settings})
}

// UpdatePrivacySettings merges a partial update into the caller's settings.
func (h *Handler) UpdatePrivacySettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var patch models.PrivacySettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.Privacy.UpdateSettings(r.Context(), sess.ActorID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, privacyResponse{Success: true, Settings: settings})
}

// RequestGlobalErase runs the cross-store erasure for the caller. The call
// succeeds even when individual steps fail; the report enumerates outcomes
// so the caller can retry idempotently. A 207 signals a partial result.
func (h *Handler) RequestGlobalErase(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	report, err := h.Privacy.RequestGlobalErase(r.Context(), sess.ActorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if report.Partial {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, eraseResponse{Success: !report.Partial, Report: report})
}
