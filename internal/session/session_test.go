package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/itbasis/go-clock"

	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/repository"
)

func newTestStore(t *testing.T) (*Store, *clock.Mock) {
	t.Helper()
	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	mock := clock.NewMock()
	mock.Set(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	return NewStore(repo, mock, logger.Noop{}), mock
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestSetGetClear(t *testing.T) {
	store, mock := newTestStore(t)
	ctx := context.Background()

	token := signedToken(t, mock.Now().Add(2*time.Hour))
	id, err := store.Create(ctx, token, "a@b.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sess, ok := store.Get(ctx, id)
	if !ok {
		t.Fatal("expected session to exist")
	}
	if sess.Token != token {
		t.Errorf("stored token mismatch")
	}

	if err := store.Clear(ctx, id); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := store.Get(ctx, id); ok {
		t.Error("session should be gone after Clear")
	}
}

func TestDurabilityAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")

	repo, err := repository.New(dbPath)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	store := NewStore(repo, mock, logger.Noop{})
	token := signedToken(t, mock.Now().Add(time.Hour))
	id, err := store.Create(context.Background(), token, "a@b.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	repo.Close()

	// Reopen the same file, as after an application restart
	repo2, err := repository.New(dbPath)
	if err != nil {
		t.Fatalf("reopen repository: %v", err)
	}
	defer repo2.Close()

	store2 := NewStore(repo2, mock, logger.Noop{})
	sess, ok := store2.Get(context.Background(), id)
	if !ok {
		t.Fatal("session must survive a restart")
	}
	if sess.Token != token {
		t.Error("token lost across restart")
	}
}

func TestExpiryFromTokenClaim(t *testing.T) {
	store, mock := newTestStore(t)
	ctx := context.Background()

	token := signedToken(t, mock.Now().Add(30*time.Minute))
	id, err := store.Create(ctx, token, "a@b.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, ok := store.Get(ctx, id); !ok {
		t.Fatal("session should be valid before the exp claim")
	}

	mock.Add(31 * time.Minute)
	if _, ok := store.Get(ctx, id); ok {
		t.Error("session should expire with the token's exp claim")
	}

	// An expired session is removed on first sight
	if _, err := store.repo.GetSession(ctx, id); err != repository.ErrNotFound {
		t.Errorf("expired session should be deleted, got %v", err)
	}
}

func TestOpaqueTokenGetsDefaultExpiry(t *testing.T) {
	store, mock := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "not-a-jwt", "a@b.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mock.Add(DefaultExpiry - time.Minute)
	if _, ok := store.Get(ctx, id); !ok {
		t.Error("session should still be valid inside the default expiry")
	}

	mock.Add(2 * time.Minute)
	if _, ok := store.Get(ctx, id); ok {
		t.Error("session should expire after the default expiry")
	}
}

func TestPurgeExpired(t *testing.T) {
	store, mock := newTestStore(t)
	ctx := context.Background()

	store.Create(ctx, signedToken(t, mock.Now().Add(10*time.Minute)), "old@b.com")
	freshID, _ := store.Create(ctx, signedToken(t, mock.Now().Add(10*time.Hour)), "fresh@b.com")

	mock.Add(time.Hour)
	store.PurgeExpired(ctx)

	if _, ok := store.Get(ctx, freshID); !ok {
		t.Error("fresh session should survive the purge")
	}
}

func TestRequireAuth(t *testing.T) {
	store, mock := newTestStore(t)

	var gotToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = Token(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := store.RequireAuth(next)

	// No cookie: redirect to sign-in
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/signin" {
		t.Errorf("expected redirect to /signin, got %q", loc)
	}

	// Valid cookie: request passes with the token in context
	token := signedToken(t, mock.Now().Add(time.Hour))
	id, _ := store.Create(context.Background(), token, "a@b.com")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotToken != token {
		t.Error("token should be injected into the request context")
	}
}

func TestRequireAuthAPI(t *testing.T) {
	store, _ := newTestStore(t)

	handler := store.RequireAuthAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fixtures", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSessionCookieHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "sid-1")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != "sid-1" {
		t.Fatalf("unexpected cookies: %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec)
	cookies = rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected expiring cookie, got %v", cookies)
	}
}
