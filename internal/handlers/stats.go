package handlers

import (
	"net/http"

	"github.com/patrickashi/vi-predict/internal/models"
	"github.com/patrickashi/vi-predict/internal/session"
	"github.com/patrickashi/vi-predict/internal/viewstate"
)

// seasonGameweeks is how many gameweeks a Premier League season has
const seasonGameweeks = 38

type dashboardPage struct {
	Page
	LoadError string
	Stats     models.DashboardView
}

func (h *Handlers) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	page := dashboardPage{Page: h.page(r, "Dashboard", "dashboard")}
	state := h.Stats.Dashboard(r.Context(), sess.Token)
	if state.Status == viewstate.Failed {
		page.LoadError = state.Message()
	} else {
		page.Stats = state.Data
	}

	h.render.HTML(w, http.StatusOK, "dashboard", page)
}

type resultsPage struct {
	Page
	LoadError    string
	NotPlayed    bool
	Gameweek     int
	PrevGameweek int
	NextGameweek int
	Stats        models.ResultsView
}

// handleResultsPage shows the scored predictions for one gameweek. Without a
// gameweek in the path it falls back to the most recent completed one from
// the dashboard.
func (h *Handlers) handleResultsPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	gameweek, err := parseIntParam(r, "gameweek")
	if err != nil {
		gameweek = h.latestCompletedGameweek(r)
		if gameweek == 0 {
			page := resultsPage{Page: h.page(r, "Results", "results"), NotPlayed: true}
			h.render.HTML(w, http.StatusOK, "results", page)
			return
		}
	}

	page := resultsPage{
		Page:     h.page(r, "Results", "results"),
		Gameweek: gameweek,
	}
	if gameweek > 1 {
		page.PrevGameweek = gameweek - 1
	}
	if gameweek < seasonGameweeks {
		page.NextGameweek = gameweek + 1
	}

	state := h.Stats.GameweekResults(r.Context(), sess.Token, gameweek)
	switch state.Status {
	case viewstate.Empty:
		page.NotPlayed = true
	case viewstate.Failed:
		page.LoadError = state.Message()
	default:
		page.Stats = state.Data
	}

	h.render.HTML(w, http.StatusOK, "results", page)
}

// latestCompletedGameweek picks a default gameweek for the bare /results path
func (h *Handlers) latestCompletedGameweek(r *http.Request) int {
	sess, _ := session.FromContext(r.Context())

	state := h.Stats.Dashboard(r.Context(), sess.Token)
	if state.Status != viewstate.Ready || len(state.Data.RecentWeeks) == 0 {
		return 0
	}
	return state.Data.RecentWeeks[0].Gameweek
}
