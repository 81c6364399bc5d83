package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aurum-collective/atelier-backend/internal/models"
	"github.com/aurum-collective/atelier-backend/internal/services"
)

// SessionValidator resolves bearer tokens to caller sessions. The session
// collaborator owns token issuance; the engine only validates.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (services.Session, bool, error)
}

// Handler carries the engine services the HTTP surface exposes.
type Handler struct {
	Journeys *services.JourneyService
	Audit    *services.AuditService
	Privacy  *services.PrivacyService
	Sessions SessionValidator
	Stream   *services.AuditStream
}

// New builds the HTTP handler set.
func New(journeys *services.JourneyService, audit *services.AuditService, privacy *services.PrivacyService, sessions SessionValidator, stream *services.AuditStream) *Handler {
	return &Handler{
		Journeys: journeys,
		Audit:    audit,
		Privacy:  privacy,
		Sessions: sessions,
		Stream:   stream,
	}
}

// extractBearerToken pulls the token out of an Authorization header.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireSession validates the request's session and writes a 401 envelope
// when it is missing or invalid.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (services.Session, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	sess, ok, err := h.Sessions.Validate(r.Context(), token)
	if err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return services.Session{}, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// writeServiceError maps the engine error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
