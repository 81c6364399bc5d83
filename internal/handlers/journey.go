package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurum-collective/atelier-backend/internal/models"
	"github.com/aurum-collective/atelier-backend/internal/services"
)

type journeyResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Journey *models.Journey `json:"journey,omitempty"`
}

type journeysResponse struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message,omitempty"`
	Journeys []*models.Journey `json:"journeys"`
	Total    int               `json:"total"`
}

type versionsResponse struct {
	Success  bool                     `json:"success"`
	Message  string                   `json:"message,omitempty"`
	Versions []*models.JourneyVersion `json:"versions"`
	Total    int                      `json:"total"`
}

// CreateJourney opens a new journey in DRAFT from a proposal payload.
func (h *Handler) CreateJourney(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var in services.CreateJourneyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	journey, err := h.Journeys.Create(r.Context(), sess, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, journeyResponse{Success: true, Journey: journey})
}

// GetJourneys lists journeys visible to the caller. Institutional callers may
// narrow to one owner with ?user_id=.
func (h *Handler) GetJourneys(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	journeys, err := h.Journeys.List(r.Context(), sess, r.URL.Query().Get("user_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if journeys == nil {
		journeys = []*models.Journey{}
	}

	writeJSON(w, http.StatusOK, journeysResponse{Success: true, Journeys: journeys, Total: len(journeys)})
}

// GetJourneyByID fetches one journey the caller may see.
func (h *Handler) GetJourneyByID(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	journey, err := h.Journeys.GetByID(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journeyResponse{Success: true, Journey: journey})
}

// UpdateJourney applies a partial edit of non-status fields; status changes
// must go through the transition endpoint.
func (h *Handler) UpdateJourney(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var patch services.JourneyPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	journey, err := h.Journeys.Update(r.Context(), sess, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journeyResponse{Success: true, Journey: journey})
}

type transitionRequest struct {
	Target string `json:"target"`
}

// TransitionJourney advances the journey lifecycle through the state machine.
func (h *Handler) TransitionJourney(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	journey, err := h.Journeys.Transition(r.Context(), sess, chi.URLParam(r, "id"), req.Target)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journeyResponse{Success: true, Journey: journey})
}

// GetJourneyVersions lists the journey's immutable snapshots, oldest first.
func (h *Handler) GetJourneyVersions(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	versions, err := h.Journeys.Versions(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if versions == nil {
		versions = []*models.JourneyVersion{}
	}

	writeJSON(w, http.StatusOK, versionsResponse{Success: true, Versions: versions, Total: len(versions)})
}
