// Package models holds the view models pages render from. These are display
// shapes only; the server-computed figures inside them are never recalculated
// here, only formatted.
package models

import "time"

// FixtureView is one match row on the fixtures page, with any draft
// prediction values merged in.
type FixtureView struct {
	ID       int
	HomeTeam string
	AwayTeam string
	Kickoff  string // formatted kick-off time
	HomeForm string // e.g. "WWDLW"
	AwayForm string

	DraftHome   string
	DraftAway   string
	DraftBanker bool
}

// MatchDay groups fixtures by calendar date for display
type MatchDay struct {
	Date     string // e.g. "Sat, 5 Sep"
	Fixtures []FixtureView
}

// GameweekView is the fixtures page view model
type GameweekView struct {
	Number     string
	Deadline   string    // formatted earliest prediction deadline
	DeadlineAt time.Time // raw deadline, feeds the live countdown
	TimeLeft   string    // countdown, e.g. "2d 4h"
	Days       []MatchDay
	Completed  int // drafts filled in
	Total      int // fixtures in the gameweek
	HasBanker  bool
}

// ResultRow is one scored fixture on the results page
type ResultRow struct {
	FixtureID     int
	HomeTeam      string
	AwayTeam      string
	HomeScore     int
	AwayScore     int
	PredictedHome int
	PredictedAway int
	Points        int
	Banker        bool
	Result        string // exact | correct | wrong
}

// ResultsView is the results page view model
type ResultsView struct {
	Gameweek           int
	TotalPoints        int
	CorrectPredictions int
	CorrectScores      int
	Accuracy           int // rounded percentage
	HighestPoints      int
	AveragePoints      int // rounded
	WrongResults       int
	Matches            []ResultRow
}

// DashboardView is the dashboard page view model
type DashboardView struct {
	TotalPoints    int
	Accuracy       int // rounded percentage
	ExactScores    int
	CorrectResults int
	GlobalRank     int
	RecentWeeks    []RecentWeek
	HotTeams       []TeamForm
	ColdTeams      []TeamForm
}

// RecentWeek is one row of the dashboard's recent-gameweeks table
type RecentWeek struct {
	Gameweek int
	Points   int
	Accuracy int // rounded percentage
}

// TeamForm is a hot/cold team entry
type TeamForm struct {
	Team     string
	Accuracy string // displayed as sent by the server
}

// ProfileView is the settings page's personal-information view
type ProfileView struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
}

// WSMessage is the envelope pushed to connected pages over the websocket
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
