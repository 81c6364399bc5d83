package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/aurum-collective/atelier-backend/internal/models"
	"github.com/aurum-collective/atelier-backend/internal/services"
	"github.com/aurum-collective/atelier-backend/internal/store"
)

// staticSessions resolves tokens from a fixed map, standing in for the
// Redis-backed validator.
type staticSessions map[string]services.Session

func (s staticSessions) Validate(ctx context.Context, token string) (services.Session, bool, error) {
	sess, ok := s[token]
	return sess, ok, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *store.MemStores) {
	t.Helper()

	stores := store.NewMemStores()
	audit := services.NewAuditService(stores.Audit, nil)
	ledger := services.NewVersionLedger(stores.Versions)
	machine := services.NewStateMachine(stores.Journeys, ledger, audit)
	journeys := services.NewJourneyService(stores.Journeys, ledger, machine, audit)
	privacy := services.NewPrivacyService(services.PrivacyDeps{
		Privacy:  stores.Privacy,
		Users:    stores.Users,
		Journeys: stores.Journeys,
		Versions: stores.Versions,
		Memories: stores.Memories,
		Intents:  stores.Intents,
		Audit:    audit,
	})
	sessions := staticSessions{
		"advisor-token": {ActorID: "rm-1", RoleContext: services.RoleContextInstitutional, Roles: []string{"relationship_manager"}},
		"client-token":  {ActorID: "client-1", RoleContext: services.RoleContextIndividual},
	}
	h := New(journeys, audit, privacy, sessions, services.NewAuditStream(nil))

	r := chi.NewRouter()
	r.Post("/api/journeys", h.CreateJourney)
	r.Get("/api/journeys", h.GetJourneys)
	r.Get("/api/journeys/{id}", h.GetJourneyByID)
	r.Patch("/api/journeys/{id}", h.UpdateJourney)
	r.Post("/api/journeys/{id}/transition", h.TransitionJourney)
	r.Get("/api/journeys/{id}/versions", h.GetJourneyVersions)
	r.Post("/api/audit", h.LogAuditEvent)
	r.Get("/api/audit", h.QueryAuditEvents)
	r.Get("/api/privacy", h.GetPrivacySettings)
	r.Patch("/api/privacy", h.UpdatePrivacySettings)
	r.Post("/api/privacy/erase", h.RequestGlobalErase)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, stores
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, envelope
}

func createJourney(t *testing.T, srv *httptest.Server, token string) *models.Journey {
	t.Helper()
	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/journeys", token, map[string]string{
		"title":     "Island retreat",
		"narrative": "Fully staffed private island for the anniversary.",
		"category":  models.CategoryExperience,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var j models.Journey
	if err := json.Unmarshal(envelope["journey"], &j); err != nil {
		t.Fatalf("decode journey: %v", err)
	}
	return &j
}

func TestAuthenticationRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/journeys"},
		{http.MethodGet, "/api/journeys"},
		{http.MethodGet, "/api/privacy"},
		{http.MethodPost, "/api/privacy/erase"},
		{http.MethodGet, "/api/audit"},
	} {
		resp, envelope := doJSON(t, route.method, srv.URL+route.path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s without token = %d, want 401", route.method, route.path, resp.StatusCode)
		}
		if string(envelope["success"]) != "false" {
			t.Errorf("%s %s envelope success = %s, want false", route.method, route.path, envelope["success"])
		}
	}

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/journeys", "bogus-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bogus token = %d, want 401", resp.StatusCode)
	}
}

func TestJourneyLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	j := createJourney(t, srv, "advisor-token")

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/journeys/"+j.ID+"/transition", "advisor-token", map[string]string{
		"target": models.StatusRMReview,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transition status = %d, want 200", resp.StatusCode)
	}
	var updated models.Journey
	if err := json.Unmarshal(envelope["journey"], &updated); err != nil {
		t.Fatalf("decode journey: %v", err)
	}
	if updated.Status != models.StatusRMReview {
		t.Fatalf("status = %s, want RM_REVIEW", updated.Status)
	}

	// Illegal edges and stale version assertions both map to 409.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/journeys/"+j.ID+"/transition", "advisor-token", map[string]string{
		"target": models.StatusExecuted,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("illegal transition status = %d, want 409", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/journeys/"+j.ID, "advisor-token", map[string]interface{}{
		"narrative":        "revised",
		"expected_version": 1,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("stale update status = %d, want 409", resp.StatusCode)
	}

	resp, envelope = doJSON(t, http.MethodGet, srv.URL+"/api/journeys/"+j.ID+"/versions", "advisor-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("versions status = %d, want 200", resp.StatusCode)
	}
	var versions []*models.JourneyVersion
	if err := json.Unmarshal(envelope["versions"], &versions); err != nil {
		t.Fatalf("decode versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("version count = %d, want 2", len(versions))
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/journeys/missing", "advisor-token", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing journey status = %d, want 404", resp.StatusCode)
	}
}

func TestJourneyVisibilityOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	j := createJourney(t, srv, "client-token")

	// Another individual's point read is indistinguishable from a miss.
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/journeys/"+j.ID, "advisor-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("institutional read = %d, want 200", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/journeys", "client-token", map[string]string{
		"title":    "For someone else",
		"category": models.CategoryLegacy,
		"user_id":  "client-2",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("individual creating for another owner = %d, want 400", resp.StatusCode)
	}
}

func TestAuditEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	j := createJourney(t, srv, "advisor-token")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/audit", "advisor-token", map[string]interface{}{
		"event":         "journey.note_added",
		"resource_id":   j.ID,
		"resource_type": models.ResourceJourney,
		"action":        models.ActionUpdate,
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("log status = %d, want 202", resp.StatusCode)
	}

	resp, envelope := doJSON(t, http.MethodGet,
		srv.URL+"/api/audit?resource_type="+models.ResourceJourney+"&resource_id="+j.ID, "advisor-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("query status = %d, want 200", resp.StatusCode)
	}
	var events []*models.AuditEvent
	if err := json.Unmarshal(envelope["events"], &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("event count = %d, want 2 (create + note)", len(events))
	}
	// The actor always comes from the session, never the body.
	if events[1].ActorID != "rm-1" {
		t.Fatalf("logged actor = %s, want session actor", events[1].ActorID)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/audit", "advisor-token", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("query without dimensions = %d, want 400", resp.StatusCode)
	}
}

func TestPrivacyEndpoints(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.Users.Put(&models.User{ID: "client-1", Name: "Margaux", Email: "m@example.com"})
	createJourney(t, srv, "client-token")

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/privacy", "client-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get settings = %d, want 200", resp.StatusCode)
	}
	var settings models.PrivacySettings
	if err := json.Unmarshal(envelope["settings"], &settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings.UserID != "client-1" {
		t.Fatalf("settings user = %s, want session actor", settings.UserID)
	}

	resp, envelope = doJSON(t, http.MethodPatch, srv.URL+"/api/privacy", "client-token", map[string]string{
		"discretion_tier": models.DiscretionElevated,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch settings = %d, want 200", resp.StatusCode)
	}

	resp, envelope = doJSON(t, http.MethodPost, srv.URL+"/api/privacy/erase", "client-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("erase = %d, want 200", resp.StatusCode)
	}
	var report models.EraseReport
	if err := json.Unmarshal(envelope["report"], &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Partial || report.Replayed || len(report.Steps) != 6 {
		t.Fatalf("unexpected report: %+v", report)
	}

	resp, envelope = doJSON(t, http.MethodPost, srv.URL+"/api/privacy/erase", "client-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replay erase = %d, want 200", resp.StatusCode)
	}
	if err := json.Unmarshal(envelope["report"], &report); err != nil {
		t.Fatalf("decode replay report: %v", err)
	}
	if !report.Replayed {
		t.Fatal("replay not marked in report")
	}

	// Settings are terminal after erasure.
	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/privacy", "client-token", map[string]string{
		"discretion_tier": models.DiscretionAbsolute,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("post-erase patch = %d, want 400", resp.StatusCode)
	}
}
