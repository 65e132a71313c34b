package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/patrickashi/vi-predict/internal/session"
	"github.com/patrickashi/vi-predict/internal/viewstate"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

type leaguesPage struct {
	Page
	LoadError string
	Overview  *predictapi.LeagueOverview

	CreateError       string
	CreateName        string
	CreateType        string
	CreateDescription string
	CreateMaxMembers  string

	JoinError   string
	JoinCode    string
	JoinMessage string
}

func (h *Handlers) leaguesView(r *http.Request, token string) leaguesPage {
	page := leaguesPage{Page: h.page(r, "Leagues", "leagues")}

	state := h.Leagues.Overview(r.Context(), token)
	if state.Status == viewstate.Failed {
		page.LoadError = state.Message()
		return page
	}
	page.Overview = state.Data
	return page
}

func (h *Handlers) handleLeaguesPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	h.render.HTML(w, http.StatusOK, "leagues", h.leaguesView(r, sess.Token))
}

// handleCreateLeague creates a league and lands on its detail page. On
// failure the form is re-rendered with the message and the submitted values.
func (h *Handlers) handleCreateLeague(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	maxMembers, _ := strconv.Atoi(r.FormValue("max_members"))
	req := predictapi.CreateLeagueRequest{
		Name:        r.FormValue("name"),
		Type:        r.FormValue("type"),
		Description: r.FormValue("description"),
		MaxMembers:  maxMembers,
	}

	league, message, err := h.Leagues.Create(r.Context(), sess.Token, req)
	if err != nil {
		page := h.leaguesView(r, sess.Token)
		page.CreateError = errorMessage(err)
		page.CreateName = req.Name
		page.CreateType = req.Type
		page.CreateDescription = req.Description
		page.CreateMaxMembers = r.FormValue("max_members")
		h.render.HTML(w, http.StatusBadRequest, "leagues", page)
		return
	}

	if message == "" {
		message = "League created."
	}
	redirectWithFlash(w, r, fmt.Sprintf("/leagues/%d", league.ID), message)
}

// handleJoinLeague joins by invite code or league id. A rejection shows the
// backend's message with the form values preserved.
func (h *Handlers) handleJoinLeague(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	joinType := r.FormValue("join_type")
	code := r.FormValue("code")
	leagueID := r.FormValue("league_id")
	joinMsg := r.FormValue("message")

	message, err := h.Leagues.Join(r.Context(), sess.Token, joinType, code, leagueID, joinMsg)
	if err != nil {
		page := h.leaguesView(r, sess.Token)
		page.JoinError = errorMessage(err)
		page.JoinCode = code
		page.JoinMessage = joinMsg
		h.render.HTML(w, http.StatusBadRequest, "leagues", page)
		return
	}

	if message == "" {
		message = "Joined league."
	}
	redirectWithFlash(w, r, "/leagues", message)
}

type leagueDetailPage struct {
	Page
	LoadError string
	Detail    *predictapi.LeagueDetail
}

func (h *Handlers) handleLeagueDetailPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	id, err := parseIntParam(r, "id")
	if err != nil {
		http.Redirect(w, r, "/leagues", http.StatusSeeOther)
		return
	}

	page := leagueDetailPage{Page: h.page(r, "League", "leagues")}
	state := h.Leagues.Detail(r.Context(), sess.Token, id)
	if state.Status == viewstate.Failed {
		page.LoadError = state.Message()
	} else {
		page.Detail = state.Data
		page.Title = state.Data.League.Name
	}

	h.render.HTML(w, http.StatusOK, "league_detail", page)
}

// handleLeagueQR serves the league's invite link as a PNG QR code
func (h *Handlers) handleLeagueQR(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Leagues.InviteQR(r.Context(), sess.Token, id, h.baseURL)
	if err != nil {
		respondError(w, NotFound("No invite code for this league"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(png)
}
