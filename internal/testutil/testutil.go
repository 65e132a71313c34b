// Package testutil provides shared fixtures for tests: an in-memory
// repository and a fake prediction backend speaking the remote API's wire
// format.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/patrickashi/vi-predict/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

// FakeBackend is an httptest server that imitates the prediction backend.
// It accepts one known credential pair and serves a small fixed gameweek.
type FakeBackend struct {
	s *httptest.Server

	// Saved records prediction batches posted to the server
	Saved [][]map[string]any
}

const (
	FakeEmail    = "alex@example.com"
	FakePassword = "secret"
	FakeToken    = "fake-access-token"
)

// NewFakeBackend starts a fake prediction backend
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	f := &FakeBackend{}

	r := chi.NewRouter()
	r.Post("/api/auth/login/", f.loginHandler)
	r.Get("/api/auth/profile/", f.authed(f.profileHandler))
	r.Get("/api/onboarding/status/", f.authed(f.onboardingStatusHandler))
	r.Get("/api/fixtures/current/", f.authed(f.fixturesHandler))
	r.Get("/api/predictions/current/", f.authed(f.predictionsHandler))
	r.Post("/api/predictions/", f.authed(f.saveHandler))

	f.s = httptest.NewServer(r)
	t.Cleanup(f.s.Close)
	return f
}

// URL returns the backend's base URL, ready for the API client
func (f *FakeBackend) URL() string {
	return f.s.URL + "/api"
}

// authed rejects requests without the fake bearer token, the way the real
// backend does.
func (f *FakeBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+FakeToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}
		next(w, r)
	}
}

func (f *FakeBackend) loginHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	if !strings.EqualFold(body.Email, FakeEmail) || body.Password != FakePassword {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"detail": "Invalid email or password.",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful.",
		"data": map[string]any{
			"tokens": map[string]any{
				"access":  FakeToken,
				"refresh": "fake-refresh-token",
			},
		},
	})
}

func (f *FakeBackend) profileHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"username":   "alexr",
			"email":      FakeEmail,
			"first_name": "Alex",
			"last_name":  "Rakeem",
		},
	})
}

func (f *FakeBackend) onboardingStatusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"completed_onboarding": true},
	})
}

func (f *FakeBackend) fixturesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"gameweek": map[string]any{"number": "4"},
			"fixtures": []map[string]any{
				{
					"id":                  11,
					"home_team":           "Arsenal",
					"away_team":           "Chelsea",
					"match_time":          "2025-09-06T15:00:00Z",
					"prediction_deadline": "2025-09-06T11:00:00Z",
					"home_team_form":      "WWDLW",
					"away_team_form":      "LWWDD",
				},
				{
					"id":                  12,
					"home_team":           "Liverpool",
					"away_team":           "Everton",
					"match_time":          "2025-09-06T17:00:00Z",
					"prediction_deadline": "2025-09-06T11:00:00Z",
					"home_team_form":      "WWWWD",
					"away_team_form":      "DLLWD",
				},
			},
		},
	})
}

func (f *FakeBackend) predictionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"predictions": []any{}},
	})
}

func (f *FakeBackend) saveHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Predictions []map[string]any `json:"predictions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Invalid payload."})
		return
	}

	f.Saved = append(f.Saved, body.Predictions)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "All predictions saved successfully!",
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
