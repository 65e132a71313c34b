package predictapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// FlexString is a string type that can be unmarshaled from either a string or
// a number. The predict API is inconsistent about numeric fields: accuracy
// comes back as "35.70" on some endpoints and as a bare number on others.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler for FlexString
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: cannot unmarshal %s", string(data))
}

// String returns the string value
func (f FlexString) String() string {
	return string(f)
}

// Float64 returns the numeric value, or 0 if the value is empty or not numeric
func (f FlexString) Float64() float64 {
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0
	}
	return v
}

// envelope is the generic predict API response wrapper
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Tokens holds the JWT pair issued on sign-in
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SignUpRequest is the payload for account registration
type SignUpRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// ResetPasswordRequest completes the forgot-password flow
type ResetPasswordRequest struct {
	Email              string `json:"email"`
	OTPCode            string `json:"otp_code"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// ChangePasswordRequest changes the password of a signed-in user
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// Profile is the user profile as returned by /auth/profile/
type Profile struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// OnboardingStatus reports whether the user finished the one-time setup flow
type OnboardingStatus struct {
	CompletedOnboarding bool `json:"completed_onboarding"`
}

// Country is an onboarding country option
type Country struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Club is an onboarding club option
type Club struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Preferences holds a user's saved onboarding choices
type Preferences struct {
	CountryID   int    `json:"country_id"`
	ClubID      int    `json:"club_id"`
	CountryName string `json:"country_name"`
	ClubName    string `json:"club_name"`
}

// Gameweek identifies the backend's current round
type Gameweek struct {
	Number FlexString `json:"number"`
}

// Fixture is a scheduled match in the current gameweek
type Fixture struct {
	ID                 int       `json:"id"`
	HomeTeam           string    `json:"home_team"`
	AwayTeam           string    `json:"away_team"`
	MatchTime          time.Time `json:"match_time"`
	PredictionDeadline time.Time `json:"prediction_deadline"`
	HomeTeamForm       string    `json:"home_team_form"`
	AwayTeamForm       string    `json:"away_team_form"`
}

// FixturesData is the payload of /fixtures/current/
type FixturesData struct {
	Gameweek Gameweek  `json:"gameweek"`
	Fixtures []Fixture `json:"fixtures"`
}

// Prediction is one score prediction, both as read and as submitted
type Prediction struct {
	Fixture   int  `json:"fixture"`
	HomeScore int  `json:"home_score"`
	AwayScore int  `json:"away_score"`
	IsBanker  bool `json:"is_banker"`
}

// predictionsData is the payload of /predictions/current/
type predictionsData struct {
	Predictions []Prediction `json:"predictions"`
}

// League is a competitive grouping of users
type League struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Type        string `json:"type"`     // public | private
	Category    string `json:"category"` // general | country | club
	Description string `json:"description"`
	MemberCount int    `json:"member_count"`
	MaxMembers  int    `json:"max_members,omitempty"`
	IsUnlimited bool   `json:"is_unlimited"`
	IsMember    bool   `json:"is_member"`
	IsOwner     bool   `json:"is_owner"`
	CanJoin     bool   `json:"can_join"`
	JoinStatus  string `json:"join_status"`
}

// LeagueSection is one featured league slot in the overview (country/club/global)
type LeagueSection struct {
	League  *League `json:"league"`
	Rank    *int    `json:"rank"`
	Message string  `json:"message"`
}

// LeagueEntry is a league the user belongs to, with their rank in it
type LeagueEntry struct {
	League League `json:"league"`
	Rank   *int   `json:"rank"`
	Role   string `json:"role"`
}

// LeaguesSection groups the user's private or public leagues in the overview
type LeaguesSection struct {
	Leagues []LeagueEntry `json:"leagues"`
	Count   int           `json:"count"`
	Message string        `json:"message"`
}

// LeagueOverview is the payload of /leagues/overview/
type LeagueOverview struct {
	CountryLeague  LeagueSection  `json:"country_league"`
	ClubLeague     LeagueSection  `json:"club_league"`
	GlobalLeague   LeagueSection  `json:"global_league"`
	PrivateLeagues LeaguesSection `json:"private_leagues"`
	PublicLeagues  LeaguesSection `json:"public_leagues"`
	TotalLeagues   struct {
		Count   int    `json:"count"`
		Message string `json:"message"`
	} `json:"total_leagues"`
	UserInfo struct {
		Username               string `json:"username"`
		HasCompletedOnboarding bool   `json:"has_completed_onboarding"`
	} `json:"user_info"`
}

// CreateLeagueRequest is the payload to create a league
type CreateLeagueRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	MaxMembers  int    `json:"max_members,omitempty"`
}

// JoinLeagueRequest joins a private league by invite code or a public one by id
type JoinLeagueRequest struct {
	Code     string `json:"code,omitempty"`
	LeagueID int    `json:"league_id,omitempty"`
	Message  string `json:"message,omitempty"`
}

// LeagueStanding is one row of a league's member table
type LeagueStanding struct {
	Rank          int    `json:"rank"`
	Username      string `json:"username"`
	TotalPoints   int    `json:"total_points"`
	RecentPoints  int    `json:"recent_points"`
	IsCurrentUser bool   `json:"is_current_user"`
}

// LeagueDetail is the payload of /leagues/{id}/
type LeagueDetail struct {
	League    League           `json:"league"`
	Standings []LeagueStanding `json:"standings"`
}

// UserStats are the server-computed per-gameweek aggregates for one user
type UserStats struct {
	TotalPoints    int        `json:"total_points"`
	CorrectResults int        `json:"correct_results"`
	ExactScores    int        `json:"exact_scores"`
	WrongResults   int        `json:"wrong_results"`
	Accuracy       FlexString `json:"accuracy"`
}

// GlobalBenchmarks compare the user against everyone in the gameweek
type GlobalBenchmarks struct {
	HighestPoints int        `json:"highest_points"`
	AveragePoints FlexString `json:"average_points"`
}

// MatchResult is one finished fixture with the user's prediction scored
type MatchResult struct {
	FixtureID          int    `json:"fixture_id"`
	HomeTeam           string `json:"home_team"`
	AwayTeam           string `json:"away_team"`
	ActualHomeScore    int    `json:"actual_home_score"`
	ActualAwayScore    int    `json:"actual_away_score"`
	PredictedHomeScore int    `json:"predicted_home_score"`
	PredictedAwayScore int    `json:"predicted_away_score"`
	PointsEarned       int    `json:"points_earned"`
	IsBanker           bool   `json:"is_banker"`
	ResultStatus       string `json:"result_status"` // exact | correct | wrong
}

// GameweekStats is the payload of /predictions/gameweek/{n}/user-stats/
type GameweekStats struct {
	UserStats        UserStats        `json:"user_stats"`
	Matches          []MatchResult    `json:"matches"`
	GlobalBenchmarks GlobalBenchmarks `json:"global_benchmarks"`
}

// SeasonStats are the running season aggregates on the dashboard
type SeasonStats struct {
	TotalPoints    int        `json:"total_points"`
	Accuracy       FlexString `json:"accuracy"`
	ExactScores    int        `json:"exact_scores"`
	CorrectResults int        `json:"correct_results"`
	GlobalRank     int        `json:"global_rank"`
}

// GameweekSummary is one row of the dashboard's recent-gameweeks table
type GameweekSummary struct {
	Gameweek int        `json:"gameweek"`
	Points   int        `json:"points"`
	Accuracy FlexString `json:"accuracy"`
}

// TeamAccuracy is a hot/cold team entry on the dashboard
type TeamAccuracy struct {
	Team     string     `json:"team"`
	Accuracy FlexString `json:"accuracy"`
}

// DashboardData is the payload of /stats/dashboard/
type DashboardData struct {
	CurrentSeasonStats SeasonStats       `json:"current_season_stats"`
	RecentGameweeks    []GameweekSummary `json:"recent_gameweeks"`
	HotTeams           []TeamAccuracy    `json:"hot_teams"`
	ColdTeams          []TeamAccuracy    `json:"cold_teams"`
}
