package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Static files (served from embedded filesystem)
	r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))

	// Landing page
	r.Get("/", h.handleIndex)

	// WebSocket
	r.Get("/ws", h.Hub.ServeWs)

	// Auth flows (public)
	r.Get("/signin", h.handleSignInPage)
	r.Post("/signin", h.handleSignIn)
	r.Get("/signup", h.handleSignUpPage)
	r.Post("/signup", h.handleSignUp)
	r.Get("/verify", h.handleVerifyPage)
	r.Post("/verify", h.handleVerifyOTP)
	r.Post("/verify/resend", h.handleResendOTP)
	r.Get("/forgot-password", h.handleForgotPasswordPage)
	r.Post("/forgot-password", h.handleForgotPassword)
	r.Get("/reset-password", h.handleResetPasswordPage)
	r.Post("/reset-password", h.handleResetPassword)
	r.Post("/signout", h.handleSignOut)

	// Pages (session required)
	r.Group(func(r chi.Router) {
		r.Use(h.Sessions.RequireAuth)

		r.Get("/dashboard", h.handleDashboardPage)

		r.Get("/fixtures", h.handleFixturesPage)
		r.Post("/fixtures/save", h.handleSavePredictions)
		r.Post("/fixtures/banker", h.handleToggleBanker)

		r.Get("/results", h.handleResultsPage)
		r.Get("/results/{gameweek}", h.handleResultsPage)

		r.Get("/leagues", h.handleLeaguesPage)
		r.Post("/leagues/create", h.handleCreateLeague)
		r.Post("/leagues/join", h.handleJoinLeague)
		r.Get("/leagues/{id}", h.handleLeagueDetailPage)
		r.Get("/leagues/{id}/qr", h.handleLeagueQR)

		r.Get("/settings", h.handleSettingsPage)
		r.Post("/settings/profile", h.handleUpdateProfile)
		r.Post("/settings/password", h.handleChangePassword)

		r.Get("/onboarding", h.handleOnboardingPage)
		r.Post("/onboarding/complete", h.handleCompleteOnboarding)
		r.Post("/onboarding/skip", h.handleSkipOnboarding)
	})

	// JSON sub-API for in-page updates (session required, 401 over redirect)
	r.Group(func(r chi.Router) {
		r.Use(h.Sessions.RequireAuthAPI)

		r.Post("/api/fixtures/draft", h.handleDraftScore)
		r.Post("/api/fixtures/banker", h.handleDraftBanker)
		r.Get("/api/clubs", h.handleSearchClubs)
	})

	return r
}
