package services

import (
	"context"

	"github.com/patrickashi/vi-predict/internal/models"
	"github.com/patrickashi/vi-predict/internal/viewstate"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

// AccountServicer handles authentication and profile operations
type AccountServicer interface {
	SignIn(ctx context.Context, email, password string) (token string, onboarded bool, err error)
	SignUp(ctx context.Context, req predictapi.SignUpRequest) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResendOTP(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, req predictapi.ResetPasswordRequest) (string, error)
	SignOut(ctx context.Context, token string)
	DisplayName(ctx context.Context, token string) string
	Profile(ctx context.Context, token string) (*models.ProfileView, error)
	UpdateProfile(ctx context.Context, token, firstName, lastName string) (string, error)
	ChangePassword(ctx context.Context, token, current, newPassword, confirm string) (string, error)
}

// OnboardingServicer handles the one-time setup flow
type OnboardingServicer interface {
	Status(ctx context.Context, token string) (bool, error)
	Countries(ctx context.Context, token string) ([]predictapi.Country, error)
	SearchClubs(ctx context.Context, token, search string) ([]predictapi.Club, error)
	Preferences(ctx context.Context, token string) (*predictapi.Preferences, error)
	Complete(ctx context.Context, token string, countryID, clubID int) error
	Skip(ctx context.Context, token string) error
}

// FixturesServicer handles the fixtures page and prediction submission
type FixturesServicer interface {
	CurrentGameweek(ctx context.Context, token, sessionID string) viewstate.State[models.GameweekView]
	SetDraftScore(sessionID string, fixtureID int, home, away string)
	ToggleBanker(sessionID string, fixtureID int)
	SavePredictions(ctx context.Context, token, sessionID string, fixtureIDs []int) (string, error)
	DropDrafts(sessionID string)
}

// LeaguesServicer handles league listing, creation and membership
type LeaguesServicer interface {
	Overview(ctx context.Context, token string) viewstate.State[*predictapi.LeagueOverview]
	Create(ctx context.Context, token string, req predictapi.CreateLeagueRequest) (*predictapi.League, string, error)
	Join(ctx context.Context, token, joinType, code, leagueID, message string) (string, error)
	Detail(ctx context.Context, token string, id int) viewstate.State[*predictapi.LeagueDetail]
	InviteQR(ctx context.Context, token string, id int, baseURL string) ([]byte, error)
}

// StatsServicer handles the dashboard and results pages
type StatsServicer interface {
	Dashboard(ctx context.Context, token string) viewstate.State[models.DashboardView]
	GameweekResults(ctx context.Context, token string, gameweek int) viewstate.State[models.ResultsView]
}
