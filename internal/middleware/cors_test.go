package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(origins ...string) http.Handler {
	return CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORSEchoesListedOrigin(t *testing.T) {
	h := corsHandler("https://portal.aurumcollective.com", "http://localhost:3000")

	req := httptest.NewRequest(http.MethodGet, "/api/journeys", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("Allow-Origin = %q, want the request origin", got)
	}
	if rec.Header().Get("Vary") != "Origin" {
		t.Fatal("Vary: Origin missing on an origin-dependent response")
	}
}

func TestCORSMatchIsCaseInsensitive(t *testing.T) {
	h := corsHandler("https://Portal.AurumCollective.com")

	req := httptest.NewRequest(http.MethodGet, "/api/journeys", nil)
	req.Header.Set("Origin", "https://portal.aurumcollective.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("case-variant origin not matched")
	}
}

func TestCORSOmitsUnlistedOrigin(t *testing.T) {
	h := corsHandler("https://portal.aurumcollective.com")

	req := httptest.NewRequest(http.MethodGet, "/api/journeys", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("Allow-Origin = %q for unlisted origin, want empty", got)
	}
}

func TestCORSAnswersPreflightDirectly(t *testing.T) {
	nextCalled := false
	h := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/journeys", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status = %d, want 200", rec.Code)
	}
	if nextCalled {
		t.Fatal("preflight reached the next handler")
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Fatal("preflight response missing Allow-Methods")
	}
}
