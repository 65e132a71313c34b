package predictapi

import (
	"context"
	"net/http"
)

// MockClient is a mock predict API client for testing
type MockClient struct {
	token         string
	signInErr     error
	profile       *Profile
	profileErr    error
	onboarded     bool
	onboardingErr error
	countries     []Country
	clubs         []Club
	preferences   *Preferences
	overview      *LeagueOverview
	overviewErr   error
	createdLeague *League
	joinMessage   string
	joinErr       error
	leagueDetail  *LeagueDetail
	fixtures      *FixturesData
	fixturesErr   error
	predictions   []Prediction
	saveMessage   string
	saveErr       error
	gameweekStats *GameweekStats
	statsErr      error
	dashboard     *DashboardData
	dashboardErr  error
	message       string

	// Saved captures the last batch passed to SavePredictions
	Saved []Prediction
	// Joined captures the last request passed to JoinLeague
	Joined JoinLeagueRequest
	// Tokens captures the token passed to every authenticated call
	Tokens []string
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithToken sets the token returned from SignIn
func WithToken(token string) MockOption {
	return func(m *MockClient) { m.token = token }
}

// WithSignInError sets an error to return from SignIn
func WithSignInError(err error) MockOption {
	return func(m *MockClient) { m.signInErr = err }
}

// WithProfile sets the profile to return
func WithProfile(p *Profile) MockOption {
	return func(m *MockClient) { m.profile = p }
}

// WithProfileError sets an error to return from Profile
func WithProfileError(err error) MockOption {
	return func(m *MockClient) { m.profileErr = err }
}

// WithOnboarded sets the onboarding-complete flag
func WithOnboarded(done bool) MockOption {
	return func(m *MockClient) { m.onboarded = done }
}

// WithOnboardingError sets an error to return from OnboardingStatus
func WithOnboardingError(err error) MockOption {
	return func(m *MockClient) { m.onboardingErr = err }
}

// WithCountries sets the countries to return
func WithCountries(countries []Country) MockOption {
	return func(m *MockClient) { m.countries = countries }
}

// WithClubs sets the clubs to return
func WithClubs(clubs []Club) MockOption {
	return func(m *MockClient) { m.clubs = clubs }
}

// WithOverview sets the league overview to return
func WithOverview(o *LeagueOverview) MockOption {
	return func(m *MockClient) { m.overview = o }
}

// WithOverviewError sets an error to return from LeaguesOverview
func WithOverviewError(err error) MockOption {
	return func(m *MockClient) { m.overviewErr = err }
}

// WithCreatedLeague sets the league returned from CreateLeague
func WithCreatedLeague(l *League) MockOption {
	return func(m *MockClient) { m.createdLeague = l }
}

// WithJoinResult sets the message and error returned from JoinLeague
func WithJoinResult(message string, err error) MockOption {
	return func(m *MockClient) {
		m.joinMessage = message
		m.joinErr = err
	}
}

// WithLeagueDetail sets the league detail to return
func WithLeagueDetail(d *LeagueDetail) MockOption {
	return func(m *MockClient) { m.leagueDetail = d }
}

// WithFixtures sets the fixtures payload to return
func WithFixtures(f *FixturesData) MockOption {
	return func(m *MockClient) { m.fixtures = f }
}

// WithFixturesError sets an error to return from CurrentFixtures
func WithFixturesError(err error) MockOption {
	return func(m *MockClient) { m.fixturesErr = err }
}

// WithNoGameweek makes CurrentFixtures fail with the backend's 404
func WithNoGameweek() MockOption {
	return func(m *MockClient) {
		m.fixturesErr = &RequestError{Status: http.StatusNotFound, Message: "No active gameweek."}
	}
}

// WithPredictions sets the saved predictions to return
func WithPredictions(p []Prediction) MockOption {
	return func(m *MockClient) { m.predictions = p }
}

// WithSaveResult sets the message and error returned from SavePredictions
func WithSaveResult(message string, err error) MockOption {
	return func(m *MockClient) {
		m.saveMessage = message
		m.saveErr = err
	}
}

// WithGameweekStats sets the gameweek stats to return
func WithGameweekStats(s *GameweekStats) MockOption {
	return func(m *MockClient) { m.gameweekStats = s }
}

// WithStatsError sets an error to return from GameweekUserStats
func WithStatsError(err error) MockOption {
	return func(m *MockClient) { m.statsErr = err }
}

// WithDashboard sets the dashboard payload to return
func WithDashboard(d *DashboardData) MockOption {
	return func(m *MockClient) { m.dashboard = d }
}

// WithDashboardError sets an error to return from DashboardStats
func WithDashboardError(err error) MockOption {
	return func(m *MockClient) { m.dashboardErr = err }
}

// WithMessage sets the generic server message returned from mutating calls
func WithMessage(message string) MockOption {
	return func(m *MockClient) { m.message = message }
}

// NewMockClient creates a mock client with sensible defaults
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		token:       "mock-access-token",
		onboarded:   true,
		profile:     &Profile{Username: "alexr", Email: "alex@example.com", FirstName: "Alex", LastName: "Rakeem"},
		message:     "OK",
		saveMessage: "All predictions saved successfully!",
		joinMessage: "Joined league.",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL implements Client
func (m *MockClient) BaseURL() string {
	return "mock://predict"
}

func (m *MockClient) record(token string) {
	m.Tokens = append(m.Tokens, token)
}

func (m *MockClient) SignIn(ctx context.Context, email, password string) (string, error) {
	if m.signInErr != nil {
		return "", m.signInErr
	}
	return m.token, nil
}

func (m *MockClient) SignUp(ctx context.Context, req SignUpRequest) error { return nil }

func (m *MockClient) VerifyOTP(ctx context.Context, email, code string) error { return nil }

func (m *MockClient) ResendOTP(ctx context.Context, email string) error { return nil }

func (m *MockClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	return m.message, nil
}

func (m *MockClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	return m.message, nil
}

func (m *MockClient) SignOut(ctx context.Context, token string) error {
	m.record(token)
	return nil
}

func (m *MockClient) Profile(ctx context.Context, token string) (*Profile, error) {
	m.record(token)
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	return m.profile, nil
}

func (m *MockClient) UpdateProfile(ctx context.Context, token, firstName, lastName string) (string, error) {
	m.record(token)
	if m.profile != nil {
		m.profile.FirstName = firstName
		m.profile.LastName = lastName
	}
	return m.message, nil
}

func (m *MockClient) ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) (string, error) {
	m.record(token)
	return m.message, nil
}

func (m *MockClient) OnboardingStatus(ctx context.Context, token string) (bool, error) {
	m.record(token)
	if m.onboardingErr != nil {
		return false, m.onboardingErr
	}
	return m.onboarded, nil
}

func (m *MockClient) Countries(ctx context.Context, token string) ([]Country, error) {
	m.record(token)
	return m.countries, nil
}

func (m *MockClient) Clubs(ctx context.Context, token, search string) ([]Club, error) {
	m.record(token)
	return m.clubs, nil
}

func (m *MockClient) Preferences(ctx context.Context, token string) (*Preferences, error) {
	m.record(token)
	if m.preferences == nil {
		return &Preferences{}, nil
	}
	return m.preferences, nil
}

func (m *MockClient) CompleteOnboarding(ctx context.Context, token string, countryID, clubID int) error {
	m.record(token)
	m.onboarded = true
	return nil
}

func (m *MockClient) SkipOnboarding(ctx context.Context, token string) error {
	m.record(token)
	m.onboarded = true
	return nil
}

func (m *MockClient) LeaguesOverview(ctx context.Context, token string) (*LeagueOverview, error) {
	m.record(token)
	if m.overviewErr != nil {
		return nil, m.overviewErr
	}
	if m.overview == nil {
		return &LeagueOverview{}, nil
	}
	return m.overview, nil
}

func (m *MockClient) CreateLeague(ctx context.Context, token string, req CreateLeagueRequest) (*League, string, error) {
	m.record(token)
	if m.createdLeague != nil {
		return m.createdLeague, m.message, nil
	}
	return &League{ID: 1, Name: req.Name, Type: req.Type, IsOwner: true, IsMember: true}, m.message, nil
}

func (m *MockClient) JoinLeague(ctx context.Context, token string, req JoinLeagueRequest) (string, error) {
	m.record(token)
	m.Joined = req
	if m.joinErr != nil {
		return "", m.joinErr
	}
	return m.joinMessage, nil
}

func (m *MockClient) League(ctx context.Context, token string, id int) (*LeagueDetail, error) {
	m.record(token)
	if m.leagueDetail == nil {
		return nil, &RequestError{Status: http.StatusNotFound, Message: "League not found."}
	}
	return m.leagueDetail, nil
}

func (m *MockClient) CurrentFixtures(ctx context.Context, token string) (*FixturesData, error) {
	m.record(token)
	if m.fixturesErr != nil {
		return nil, m.fixturesErr
	}
	if m.fixtures == nil {
		return &FixturesData{}, nil
	}
	return m.fixtures, nil
}

func (m *MockClient) CurrentPredictions(ctx context.Context, token string) ([]Prediction, error) {
	m.record(token)
	return m.predictions, nil
}

func (m *MockClient) SavePredictions(ctx context.Context, token string, predictions []Prediction) (string, error) {
	m.record(token)
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.Saved = predictions
	m.predictions = predictions
	return m.saveMessage, nil
}

func (m *MockClient) GameweekUserStats(ctx context.Context, token string, gameweek int) (*GameweekStats, error) {
	m.record(token)
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	if m.gameweekStats == nil {
		return nil, &RequestError{Status: http.StatusNotFound, Message: "No results for this gameweek."}
	}
	return m.gameweekStats, nil
}

func (m *MockClient) DashboardStats(ctx context.Context, token string) (*DashboardData, error) {
	m.record(token)
	if m.dashboardErr != nil {
		return nil, m.dashboardErr
	}
	if m.dashboard == nil {
		return &DashboardData{}, nil
	}
	return m.dashboard, nil
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
