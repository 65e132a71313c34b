package predictapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/testutil"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

// These tests run the HTTP client against a fake backend speaking the real
// wire format, covering the full sign-in -> fetch -> save round trip.

func newBackendClient(t *testing.T) (*testutil.FakeBackend, *predictapi.HTTPClient) {
	t.Helper()
	backend := testutil.NewFakeBackend(t)
	return backend, predictapi.NewHTTPClient(backend.URL(), logger.Noop{})
}

func TestIntegration_SignInAndProfile(t *testing.T) {
	_, client := newBackendClient(t)
	ctx := context.Background()

	token, err := client.SignIn(ctx, testutil.FakeEmail, testutil.FakePassword)
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if token != testutil.FakeToken {
		t.Errorf("expected token %q, got %q", testutil.FakeToken, token)
	}

	profile, err := client.Profile(ctx, token)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.FirstName != "Alex" || profile.Username != "alexr" {
		t.Errorf("unexpected profile: %+v", profile)
	}

	onboarded, err := client.OnboardingStatus(ctx, token)
	if err != nil {
		t.Fatalf("OnboardingStatus failed: %v", err)
	}
	if !onboarded {
		t.Error("expected onboarded user")
	}
}

func TestIntegration_WrongPassword(t *testing.T) {
	_, client := newBackendClient(t)

	_, err := client.SignIn(context.Background(), testutil.FakeEmail, "nope")
	if err == nil {
		t.Fatal("expected sign-in to fail")
	}
	var reqErr *predictapi.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T", err)
	}
	if reqErr.Status != 401 {
		t.Errorf("expected status 401, got %d", reqErr.Status)
	}
}

func TestIntegration_RejectsMissingToken(t *testing.T) {
	_, client := newBackendClient(t)

	_, err := client.CurrentFixtures(context.Background(), "wrong-token")
	var reqErr *predictapi.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Status != 401 {
		t.Errorf("expected status 401, got %d", reqErr.Status)
	}
}

func TestIntegration_FixturesAndSave(t *testing.T) {
	backend, client := newBackendClient(t)
	ctx := context.Background()

	data, err := client.CurrentFixtures(ctx, testutil.FakeToken)
	if err != nil {
		t.Fatalf("CurrentFixtures failed: %v", err)
	}
	if got := data.Gameweek.Number.String(); got != "4" {
		t.Errorf("expected gameweek 4, got %q", got)
	}
	if len(data.Fixtures) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(data.Fixtures))
	}
	if data.Fixtures[0].HomeTeam != "Arsenal" {
		t.Errorf("unexpected first fixture: %+v", data.Fixtures[0])
	}
	if data.Fixtures[0].PredictionDeadline.IsZero() {
		t.Error("deadline not parsed")
	}

	preds := []predictapi.Prediction{
		{Fixture: 11, HomeScore: 2, AwayScore: 1, IsBanker: true},
		{Fixture: 12, HomeScore: 0, AwayScore: 0},
	}
	msg, err := client.SavePredictions(ctx, testutil.FakeToken, preds)
	if err != nil {
		t.Fatalf("SavePredictions failed: %v", err)
	}
	if msg == "" {
		t.Error("expected a confirmation message")
	}

	if len(backend.Saved) != 1 {
		t.Fatalf("expected 1 save, got %d", len(backend.Saved))
	}
	saved := backend.Saved[0]
	if len(saved) != 2 {
		t.Fatalf("expected 2 predictions posted, got %d", len(saved))
	}
	if saved[0]["fixture"] != float64(11) || saved[0]["is_banker"] != true {
		t.Errorf("unexpected first prediction: %v", saved[0])
	}

	current, err := client.CurrentPredictions(ctx, testutil.FakeToken)
	if err != nil {
		t.Fatalf("CurrentPredictions failed: %v", err)
	}
	if len(current) != 0 {
		t.Errorf("expected no stored predictions, got %d", len(current))
	}
}
