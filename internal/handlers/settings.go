package handlers

import (
	"net/http"
	"strconv"

	"github.com/patrickashi/vi-predict/internal/models"
	"github.com/patrickashi/vi-predict/internal/session"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

type settingsPage struct {
	Page
	LoadError     string
	Profile       models.ProfileView
	Preferences   *predictapi.Preferences
	ProfileError  string
	PasswordError string
}

func (h *Handlers) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	page := settingsPage{Page: h.page(r, "Settings", "settings")}
	profile, err := h.Account.Profile(r.Context(), sess.Token)
	if err != nil {
		page.LoadError = errorMessage(err)
	} else {
		page.Profile = *profile
	}

	// Onboarding picks are display-only here; a fetch failure just hides them
	if prefs, err := h.Onboarding.Preferences(r.Context(), sess.Token); err == nil {
		page.Preferences = prefs
	}

	h.render.HTML(w, http.StatusOK, "settings", page)
}

func (h *Handlers) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	message, err := h.Account.UpdateProfile(r.Context(), sess.Token, r.FormValue("first_name"), r.FormValue("last_name"))
	if err != nil {
		page := settingsPage{Page: h.page(r, "Settings", "settings")}
		if profile, perr := h.Account.Profile(r.Context(), sess.Token); perr == nil {
			page.Profile = *profile
		}
		page.Profile.FirstName = r.FormValue("first_name")
		page.Profile.LastName = r.FormValue("last_name")
		page.ProfileError = errorMessage(err)
		h.render.HTML(w, http.StatusBadRequest, "settings", page)
		return
	}

	if message == "" {
		message = "Profile updated."
	}
	redirectWithFlash(w, r, "/settings", message)
}

func (h *Handlers) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	message, err := h.Account.ChangePassword(r.Context(), sess.Token,
		r.FormValue("current_password"),
		r.FormValue("new_password"),
		r.FormValue("new_password_confirm"),
	)
	if err != nil {
		page := settingsPage{Page: h.page(r, "Settings", "settings")}
		if profile, perr := h.Account.Profile(r.Context(), sess.Token); perr == nil {
			page.Profile = *profile
		}
		page.PasswordError = errorMessage(err)
		h.render.HTML(w, http.StatusBadRequest, "settings", page)
		return
	}

	if message == "" {
		message = "Password changed."
	}
	redirectWithFlash(w, r, "/settings", message)
}

type onboardingPage struct {
	Page
	Countries []predictapi.Country
	Clubs     []predictapi.Club
}

// handleOnboardingPage shows the one-time country and club picker. Users who
// already finished it are bounced to the dashboard.
func (h *Handlers) handleOnboardingPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	if done, err := h.Onboarding.Status(r.Context(), sess.Token); err == nil && done {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	page := onboardingPage{Page: h.page(r, "Get started", "")}
	page.Countries, _ = h.Onboarding.Countries(r.Context(), sess.Token)
	page.Clubs, _ = h.Onboarding.SearchClubs(r.Context(), sess.Token, "")

	h.render.HTML(w, http.StatusOK, "onboarding", page)
}

func (h *Handlers) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	countryID, _ := strconv.Atoi(r.FormValue("country_id"))
	clubID, _ := strconv.Atoi(r.FormValue("club_id"))

	if err := h.Onboarding.Complete(r.Context(), sess.Token, countryID, clubID); err != nil {
		redirectWithError(w, r, "/onboarding", errorMessage(err))
		return
	}

	redirectWithFlash(w, r, "/dashboard", "You're all set!")
}

func (h *Handlers) handleSkipOnboarding(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	if err := h.Onboarding.Skip(r.Context(), sess.Token); err != nil {
		redirectWithError(w, r, "/onboarding", errorMessage(err))
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleSearchClubs powers the club search box on the onboarding page
func (h *Handlers) handleSearchClubs(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	clubs, err := h.Onboarding.SearchClubs(r.Context(), sess.Token, r.URL.Query().Get("search"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, clubs)
}
