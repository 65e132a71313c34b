package handlers

import (
	"net/http"
	"strconv"

	"github.com/patrickashi/vi-predict/internal/models"
	"github.com/patrickashi/vi-predict/internal/session"
	"github.com/patrickashi/vi-predict/internal/viewstate"
)

type fixturesPage struct {
	Page
	NoGameweek bool
	LoadError  string
	Gameweek   models.GameweekView
}

// handleFixturesPage renders the current gameweek with the session's draft
// predictions merged in.
func (h *Handlers) handleFixturesPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	state := h.Fixtures.CurrentGameweek(r.Context(), sess.Token, sess.ID)

	page := fixturesPage{Page: h.page(r, "Fixtures", "fixtures")}
	switch state.Status {
	case viewstate.Ready:
		page.Gameweek = state.Data
		if h.Hub != nil && !state.Data.DeadlineAt.IsZero() {
			h.Hub.SetDeadline(state.Data.Number, state.Data.DeadlineAt)
		}
	case viewstate.Empty:
		page.NoGameweek = true
	default:
		// Failed, or a concurrent refresh still holds the load sequence.
		// Either way the page offers a retry rather than zero-value data.
		page.LoadError = state.Message()
		if page.LoadError == "" {
			page.LoadError = "Fixtures are being refreshed, please try again."
		}
	}

	h.render.HTML(w, http.StatusOK, "fixtures", page)
}

// handleSavePredictions submits the whole form as one batch. Fixture IDs come
// from the form so the batch covers every fixture the user was shown.
func (h *Handlers) handleSavePredictions(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/fixtures", "Invalid form submission.")
		return
	}

	var fixtureIDs []int
	for _, raw := range r.PostForm["fixture_id"] {
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		fixtureIDs = append(fixtureIDs, id)
		h.Fixtures.SetDraftScore(sess.ID, id, r.PostFormValue("home_"+raw), r.PostFormValue("away_"+raw))
	}

	message, err := h.Fixtures.SavePredictions(r.Context(), sess.Token, sess.ID, fixtureIDs)
	if err != nil {
		redirectWithError(w, r, "/fixtures", errorMessage(err))
		return
	}

	redirectWithFlash(w, r, "/fixtures", message)
}

// handleToggleBanker is the no-JavaScript fallback for the banker star
func (h *Handlers) handleToggleBanker(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	id, err := strconv.Atoi(r.FormValue("fixture_id"))
	if err != nil {
		redirectWithError(w, r, "/fixtures", "Invalid fixture.")
		return
	}

	h.Fixtures.ToggleBanker(sess.ID, id)
	http.Redirect(w, r, "/fixtures", http.StatusSeeOther)
}

type draftRequest struct {
	FixtureID int    `json:"fixture_id"`
	Home      string `json:"home"`
	Away      string `json:"away"`
}

// handleDraftScore records a score edit without a page reload
func (h *Handlers) handleDraftScore(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.FixtureID <= 0 {
		respondError(w, BadRequest("Invalid fixture"))
		return
	}

	h.Fixtures.SetDraftScore(sess.ID, req.FixtureID, req.Home, req.Away)
	respondOK(w, map[string]string{"status": "ok"})
}

type bankerRequest struct {
	FixtureID int `json:"fixture_id"`
}

// handleDraftBanker toggles the banker without a page reload
func (h *Handlers) handleDraftBanker(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	var req bankerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.FixtureID <= 0 {
		respondError(w, BadRequest("Invalid fixture"))
		return
	}

	h.Fixtures.ToggleBanker(sess.ID, req.FixtureID)
	respondOK(w, map[string]string{"status": "ok"})
}
