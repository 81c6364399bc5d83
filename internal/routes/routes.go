package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/aurum-collective/atelier-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux, h *handlers.Handler) {
	// Journey lifecycle routes
	r.Post("/api/journeys", h.CreateJourney)
	r.Get("/api/journeys", h.GetJourneys)
	r.Get("/api/journeys/{id}", h.GetJourneyByID)
	r.Patch("/api/journeys/{id}", h.UpdateJourney)
	r.Post("/api/journeys/{id}/transition", h.TransitionJourney)
	r.Get("/api/journeys/{id}/versions", h.GetJourneyVersions)

	// Audit trail routes
	r.Post("/api/audit", h.LogAuditEvent)
	r.Get("/api/audit", h.QueryAuditEvents)

	// Privacy routes
	r.Get("/api/privacy", h.GetPrivacySettings)
	r.Patch("/api/privacy", h.UpdatePrivacySettings)
	r.Post("/api/privacy/erase", h.RequestGlobalErase)

	// WebSocket endpoint for the live audit dashboard
	r.Get("/ws/audit", h.AuditWebSocket)
}
