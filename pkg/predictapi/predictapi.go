// Package predictapi provides a client for the VI-Predict REST backend.
package predictapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickashi/vi-predict/internal/logger"
)

// DefaultBaseURL is used when no base URL is configured
const DefaultBaseURL = "http://localhost:8000/api"

// RequestError is the single error shape every failed request surfaces as,
// whether the failure was at the transport level or an HTTP 4xx/5xx. Status
// is 0 for transport failures.
type RequestError struct {
	Status  int
	Message string
	Fields  map[string][]string // field-level validation errors, if any
	Err     error               // underlying error, if any
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// FieldError returns the first validation message recorded for the named
// field, or "" if there is none.
func (e *RequestError) FieldError(field string) string {
	if msgs, ok := e.Fields[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// AsRequestError unwraps err into a *RequestError if possible
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is an HTTP 404 from the backend. The backend
// overloads 404 on listing endpoints to mean "nothing currently available",
// so callers treat this as an empty state rather than a failure.
func IsNotFound(err error) bool {
	if reqErr, ok := AsRequestError(err); ok {
		return reqErr.Status == http.StatusNotFound
	}
	return false
}

// Client defines the predict API operations. Authenticated calls take the
// bearer token explicitly so that no method reads hidden global state.
type Client interface {
	// BaseURL reports the backend base URL the client talks to
	BaseURL() string

	// SignIn authenticates and returns the issued access token
	SignIn(ctx context.Context, email, password string) (string, error)
	// SignUp registers a new account; verification continues over OTP
	SignUp(ctx context.Context, req SignUpRequest) error
	// VerifyOTP confirms the email-verification code sent on sign-up
	VerifyOTP(ctx context.Context, email, code string) error
	// ResendOTP requests a fresh email-verification code
	ResendOTP(ctx context.Context, email string) error
	// ForgotPassword starts the recovery flow; returns the server message
	ForgotPassword(ctx context.Context, email string) (string, error)
	// ResetPassword completes the recovery flow; returns the server message
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error)
	// SignOut invalidates the token server-side; best effort
	SignOut(ctx context.Context, token string) error

	Profile(ctx context.Context, token string) (*Profile, error)
	UpdateProfile(ctx context.Context, token, firstName, lastName string) (string, error)
	ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) (string, error)

	OnboardingStatus(ctx context.Context, token string) (bool, error)
	Countries(ctx context.Context, token string) ([]Country, error)
	Clubs(ctx context.Context, token, search string) ([]Club, error)
	Preferences(ctx context.Context, token string) (*Preferences, error)
	CompleteOnboarding(ctx context.Context, token string, countryID, clubID int) error
	SkipOnboarding(ctx context.Context, token string) error

	LeaguesOverview(ctx context.Context, token string) (*LeagueOverview, error)
	CreateLeague(ctx context.Context, token string, req CreateLeagueRequest) (*League, string, error)
	JoinLeague(ctx context.Context, token string, req JoinLeagueRequest) (string, error)
	League(ctx context.Context, token string, id int) (*LeagueDetail, error)

	CurrentFixtures(ctx context.Context, token string) (*FixturesData, error)
	CurrentPredictions(ctx context.Context, token string) ([]Prediction, error)
	SavePredictions(ctx context.Context, token string, predictions []Prediction) (string, error)
	GameweekUserStats(ctx context.Context, token string, gameweek int) (*GameweekStats, error)
	DashboardStats(ctx context.Context, token string) (*DashboardData, error)
}

// HTTPClient is the real predict API client
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new predict API client
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	c := NewHTTPClient(baseURL, log)
	c.httpClient = httpClient
	return c
}

// BaseURL returns the configured backend base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// do executes one request against the backend. It builds the URL from the
// configured base, sets the JSON content type, attaches the bearer token when
// one is given, and normalizes every failure into a *RequestError. A nil out
// skips body decoding (no-content responses).
func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, out any) error {
	reqURL := c.baseURL + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug("predict API request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Message: "could not reach the server", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Message: "failed to read response", Err: err}
	}

	c.log.Debug("predict API response", "status", resp.StatusCode, "body", string(raw))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeError(resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{Message: "failed to parse response", Err: err}
	}
	return nil
}

// normalizeError extracts a human-readable message from a non-2xx response
// body. The backend is inconsistent: errors arrive as {"detail": ...},
// {"message": ...}, {"errors": {"detail": ...}} or as per-field validation
// arrays like {"username": ["already taken"]}. A non-JSON or empty body is
// tolerated and falls back to a generic message.
func normalizeError(status int, raw []byte) *RequestError {
	reqErr := &RequestError{
		Status:  status,
		Message: fmt.Sprintf("request failed with status %d", status),
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return reqErr
	}

	if msg := stringField(parsed, "detail"); msg != "" {
		reqErr.Message = msg
		return reqErr
	}
	if msg := stringField(parsed, "message"); msg != "" {
		reqErr.Message = msg
		return reqErr
	}
	if nested, ok := parsed["errors"]; ok {
		var errMap map[string]json.RawMessage
		if json.Unmarshal(nested, &errMap) == nil {
			if msg := stringField(errMap, "detail"); msg != "" {
				reqErr.Message = msg
				return reqErr
			}
		}
	}

	// Field-level validation arrays: collect them all and surface the
	// flattened form as the message.
	var flattened []string
	for field, value := range parsed {
		var msgs []string
		if json.Unmarshal(value, &msgs) == nil && len(msgs) > 0 {
			if reqErr.Fields == nil {
				reqErr.Fields = make(map[string][]string)
			}
			reqErr.Fields[field] = msgs
			flattened = append(flattened, msgs...)
		}
	}
	if len(flattened) > 0 {
		reqErr.Message = strings.Join(flattened, " ")
	}

	return reqErr
}

func stringField(m map[string]json.RawMessage, key string) string {
	value, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(value, &s) != nil {
		return ""
	}
	return s
}

// unwrapData decodes the {"message": ..., "data": ...} envelope into out and
// returns the message. Endpoints that respond without the envelope are
// decoded directly into out.
func unwrapData(raw *envelope, out any) error {
	if len(raw.Data) == 0 {
		return nil
	}
	return json.Unmarshal(raw.Data, out)
}

// SignIn authenticates with the backend and returns the issued access token
func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}

	var resp envelope
	if err := c.do(ctx, http.MethodPost, "/auth/login/", "", body, &resp); err != nil {
		return "", err
	}

	var data struct {
		Tokens Tokens `json:"tokens"`
	}
	if err := unwrapData(&resp, &data); err != nil {
		return "", &RequestError{Message: "failed to parse login response", Err: err}
	}
	if data.Tokens.Access == "" {
		return "", &RequestError{Message: "login succeeded but no auth token was provided"}
	}

	c.log.Info("sign-in successful", "email", email)
	return data.Tokens.Access, nil
}

// SignUp registers a new account
func (c *HTTPClient) SignUp(ctx context.Context, req SignUpRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register/", "", req, nil)
}

// VerifyOTP confirms the email-verification code
func (c *HTTPClient) VerifyOTP(ctx context.Context, email, code string) error {
	body := map[string]string{
		"otp_code": code,
		"purpose":  "email_verification",
		"email":    email,
	}
	return c.do(ctx, http.MethodPost, "/auth/verify-otp/", "", body, nil)
}

// ResendOTP requests a fresh email-verification code
func (c *HTTPClient) ResendOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email, "purpose": "email_verification"}
	return c.do(ctx, http.MethodPost, "/auth/resend-otp/", "", body, nil)
}

// ForgotPassword starts the password recovery flow
func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp envelope
	err := c.do(ctx, http.MethodPost, "/auth/forgot-password/", "", map[string]string{"email": email}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResetPassword completes the password recovery flow
func (c *HTTPClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password/", "", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SignOut invalidates the token server-side. Callers clear the local session
// regardless of the outcome.
func (c *HTTPClient) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout/", token, nil, nil)
}

// Profile fetches the signed-in user's profile
func (c *HTTPClient) Profile(ctx context.Context, token string) (*Profile, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodGet, "/auth/profile/", token, nil, &resp); err != nil {
		return nil, err
	}
	var profile Profile
	if err := unwrapData(&resp, &profile); err != nil {
		return nil, &RequestError{Message: "failed to parse profile response", Err: err}
	}
	return &profile, nil
}

// UpdateProfile saves the user's name fields and returns the server message
func (c *HTTPClient) UpdateProfile(ctx context.Context, token, firstName, lastName string) (string, error) {
	body := map[string]string{"first_name": firstName, "last_name": lastName}
	var resp envelope
	if err := c.do(ctx, http.MethodPut, "/auth/profile/", token, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ChangePassword changes the signed-in user's password
func (c *HTTPClient) ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) (string, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodPost, "/auth/change-password/", token, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// OnboardingStatus reports whether the user completed the onboarding flow
func (c *HTTPClient) OnboardingStatus(ctx context.Context, token string) (bool, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodGet, "/onboarding/status/", token, nil, &resp); err != nil {
		return false, err
	}
	var status OnboardingStatus
	if err := unwrapData(&resp, &status); err != nil {
		return false, &RequestError{Message: "failed to parse onboarding status", Err: err}
	}
	return status.CompletedOnboarding, nil
}

// Countries lists the onboarding country options
func (c *HTTPClient) Countries(ctx context.Context, token string) ([]Country, error) {
	var countries []Country
	if err := c.do(ctx, http.MethodGet, "/onboarding/countries/", token, nil, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// Clubs searches the onboarding club options
func (c *HTTPClient) Clubs(ctx context.Context, token, search string) ([]Club, error) {
	path := "/onboarding/clubs/"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var clubs []Club
	if err := c.do(ctx, http.MethodGet, path, token, nil, &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}

// Preferences fetches any previously saved onboarding choices
func (c *HTTPClient) Preferences(ctx context.Context, token string) (*Preferences, error) {
	var prefs Preferences
	if err := c.do(ctx, http.MethodGet, "/onboarding/preferences/", token, nil, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// CompleteOnboarding records the user's country and club choices
func (c *HTTPClient) CompleteOnboarding(ctx context.Context, token string, countryID, clubID int) error {
	body := map[string]int{"country_id": countryID, "club_id": clubID}
	return c.do(ctx, http.MethodPost, "/onboarding/complete/", token, body, nil)
}

// SkipOnboarding marks the onboarding flow skipped
func (c *HTTPClient) SkipOnboarding(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/onboarding/skip/", token, nil, nil)
}

// LeaguesOverview fetches the structured league overview
func (c *HTTPClient) LeaguesOverview(ctx context.Context, token string) (*LeagueOverview, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodGet, "/leagues/overview/", token, nil, &resp); err != nil {
		return nil, err
	}
	var overview LeagueOverview
	if err := unwrapData(&resp, &overview); err != nil {
		return nil, &RequestError{Message: "failed to parse leagues overview", Err: err}
	}
	return &overview, nil
}

// CreateLeague creates a league and returns it with the server message
func (c *HTTPClient) CreateLeague(ctx context.Context, token string, req CreateLeagueRequest) (*League, string, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodPost, "/leagues/", token, req, &resp); err != nil {
		return nil, "", err
	}
	var league League
	if err := unwrapData(&resp, &league); err != nil {
		return nil, "", &RequestError{Message: "failed to parse created league", Err: err}
	}
	return &league, resp.Message, nil
}

// JoinLeague joins a league and returns the server's confirmation message
func (c *HTTPClient) JoinLeague(ctx context.Context, token string, req JoinLeagueRequest) (string, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodPost, "/leagues/join/", token, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// League fetches one league with its standings
func (c *HTTPClient) League(ctx context.Context, token string, id int) (*LeagueDetail, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/leagues/%d/", id), token, nil, &resp); err != nil {
		return nil, err
	}
	var detail LeagueDetail
	if err := unwrapData(&resp, &detail); err != nil {
		return nil, &RequestError{Message: "failed to parse league detail", Err: err}
	}
	return &detail, nil
}

// CurrentFixtures fetches the current gameweek's fixtures. A 404 means no
// gameweek is active; callers detect that with IsNotFound.
func (c *HTTPClient) CurrentFixtures(ctx context.Context, token string) (*FixturesData, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodGet, "/fixtures/current/", token, nil, &resp); err != nil {
		return nil, err
	}
	var data FixturesData
	if err := unwrapData(&resp, &data); err != nil {
		return nil, &RequestError{Message: "failed to parse fixtures response", Err: err}
	}
	return &data, nil
}

// CurrentPredictions fetches the user's saved predictions for the current gameweek
func (c *HTTPClient) CurrentPredictions(ctx context.Context, token string) ([]Prediction, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodGet, "/predictions/current/", token, nil, &resp); err != nil {
		return nil, err
	}
	var data predictionsData
	if err := unwrapData(&resp, &data); err != nil {
		return nil, &RequestError{Message: "failed to parse predictions response", Err: err}
	}
	return data.Predictions, nil
}

// SavePredictions submits the full prediction batch for the current gameweek
func (c *HTTPClient) SavePredictions(ctx context.Context, token string, predictions []Prediction) (string, error) {
	body := map[string][]Prediction{"predictions": predictions}
	var resp envelope
	if err := c.do(ctx, http.MethodPost, "/predictions/", token, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// GameweekUserStats fetches the user's scored results for one gameweek
func (c *HTTPClient) GameweekUserStats(ctx context.Context, token string, gameweek int) (*GameweekStats, error) {
	var resp envelope
	path := fmt.Sprintf("/predictions/gameweek/%d/user-stats/", gameweek)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	var stats GameweekStats
	if err := unwrapData(&resp, &stats); err != nil {
		return nil, &RequestError{Message: "failed to parse gameweek stats", Err: err}
	}
	return &stats, nil
}

// DashboardStats fetches the dashboard aggregates
func (c *HTTPClient) DashboardStats(ctx context.Context, token string) (*DashboardData, error) {
	var resp envelope
	if err := c.do(ctx, http.MethodGet, "/stats/dashboard/", token, nil, &resp); err != nil {
		return nil, err
	}
	var data DashboardData
	if err := unwrapData(&resp, &data); err != nil {
		return nil, &RequestError{Message: "failed to parse dashboard stats", Err: err}
	}
	return &data, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
