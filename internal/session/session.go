// Package session holds the bearer credential issued by the backend. The
// store is the sole source of truth for "is a user logged in": sessions are
// persisted to sqlite so a sign-in survives a full application restart.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/itbasis/go-clock"

	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/repository"
)

const (
	CookieName    = "vipredict_session"
	DefaultExpiry = 24 * time.Hour
)

// Store manages browser sessions and the backend tokens bound to them
type Store struct {
	repo  *repository.Repository
	clock clock.Clock
	log   logger.Logger
}

// NewStore creates a session store
func NewStore(repo *repository.Repository, clk clock.Clock, log logger.Logger) *Store {
	return &Store{repo: repo, clock: clk, log: log}
}

// Create persists a new session for the given backend token and returns the
// session ID. The session expires when the access token does; if the token's
// exp claim cannot be read, a default expiry applies.
func (s *Store) Create(ctx context.Context, token, email string) (string, error) {
	id := generateID()
	now := s.clock.Now()

	expires := tokenExpiry(token)
	if expires.IsZero() || expires.Before(now) {
		expires = now.Add(DefaultExpiry)
	}

	err := s.repo.CreateSession(ctx, repository.Session{
		ID:        id,
		Token:     token,
		Email:     email,
		ExpiresAt: expires,
	})
	if err != nil {
		return "", err
	}

	s.log.Debug("session created", "email", email, "expires_at", expires)
	return id, nil
}

// Get returns the session for the given ID, or false if it does not exist or
// has expired. Expired sessions are removed on first sight.
func (s *Store) Get(ctx context.Context, id string) (*repository.Session, bool) {
	if id == "" {
		return nil, false
	}

	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, false
	}

	if s.clock.Now().After(sess.ExpiresAt) {
		s.repo.DeleteSession(ctx, id)
		s.log.Debug("session expired", "email", sess.Email)
		return nil, false
	}

	return sess, true
}

// Clear removes a session
func (s *Store) Clear(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// PurgeExpired removes all expired sessions. Called periodically by the app.
func (s *Store) PurgeExpired(ctx context.Context) {
	n, err := s.repo.DeleteExpiredSessions(ctx, s.clock.Now())
	if err != nil {
		s.log.Warn("failed purging expired sessions", "error", err)
		return
	}
	if n > 0 {
		s.log.Debug("purged expired sessions", "count", n)
	}
}

// FromRequest extracts and validates the session from a request's cookie
func (s *Store) FromRequest(r *http.Request) (*repository.Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return s.Get(r.Context(), cookie.Value)
}

// RequireAuth is middleware for pages: an unauthenticated visit to a gated
// path redirects to sign-in. The session is injected into the request context.
func (s *Store) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.FromRequest(r)
		if !ok {
			http.Redirect(w, r, "/signin", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// RequireAuthAPI is middleware for the JSON sub-API: it returns 401 instead
// of redirecting.
func (s *Store) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.FromRequest(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please sign in"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(DefaultExpiry.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

type contextKey struct{}

// WithSession returns a context carrying the session
func WithSession(ctx context.Context, sess *repository.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session injected by RequireAuth, if any
func FromContext(ctx context.Context) (*repository.Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*repository.Session)
	return sess, ok
}

// Token returns the bearer token from the request context, or "" when the
// request is unauthenticated.
func Token(ctx context.Context) string {
	if sess, ok := FromContext(ctx); ok {
		return sess.Token
	}
	return ""
}

// tokenExpiry reads the exp claim from the access token without verifying the
// signature. The token is otherwise opaque to this application; verification
// is the backend's job.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// generateID creates a random session ID
func generateID() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
