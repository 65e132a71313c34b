package services

import (
	"context"
	"testing"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/patrickashi/vi-predict/internal/drafts"
	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/viewstate"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

func testFixtures() *predictapi.FixturesData {
	saturday := time.Date(2025, 9, 6, 15, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 9, 7, 14, 0, 0, 0, time.UTC)
	deadline := time.Date(2025, 9, 6, 11, 0, 0, 0, time.UTC)

	return &predictapi.FixturesData{
		Gameweek: predictapi.Gameweek{Number: "4"},
		Fixtures: []predictapi.Fixture{
			{ID: 11, HomeTeam: "Arsenal", AwayTeam: "Chelsea", MatchTime: saturday, PredictionDeadline: deadline, HomeTeamForm: "WWDLW"},
			{ID: 12, HomeTeam: "Liverpool", AwayTeam: "Everton", MatchTime: saturday.Add(2 * time.Hour), PredictionDeadline: deadline},
			{ID: 13, HomeTeam: "Spurs", AwayTeam: "Wolves", MatchTime: sunday, PredictionDeadline: deadline},
		},
	}
}

func newFixturesService(t *testing.T, opts ...predictapi.MockOption) (*FixturesService, *predictapi.MockClient, *clock.Mock) {
	t.Helper()
	mock := predictapi.NewMockClient(opts...)
	clk := clock.NewMock()
	clk.Set(time.Date(2025, 9, 4, 9, 0, 0, 0, time.UTC))
	svc := NewFixturesService(logger.Noop{}, mock, drafts.NewStore(), clk)
	return svc, mock, clk
}

func TestCurrentGameweekGroupsByDate(t *testing.T) {
	svc, _, _ := newFixturesService(t, predictapi.WithFixtures(testFixtures()))

	state := svc.CurrentGameweek(context.Background(), "tok", "sess-1")
	if state.Status != viewstate.Ready {
		t.Fatalf("status = %v, want Ready (err: %v)", state.Status, state.Err)
	}

	view := state.Data
	if view.Number != "4" {
		t.Errorf("gameweek number = %q, want %q", view.Number, "4")
	}
	if view.Total != 3 {
		t.Errorf("total = %d, want 3", view.Total)
	}
	if len(view.Days) != 2 {
		t.Fatalf("match days = %d, want 2", len(view.Days))
	}
	if got := len(view.Days[0].Fixtures); got != 2 {
		t.Errorf("first day fixtures = %d, want 2", got)
	}
	if view.Days[0].Date != "Sat, 6 Sep" {
		t.Errorf("first day = %q, want %q", view.Days[0].Date, "Sat, 6 Sep")
	}
	if view.TimeLeft != "2d 2h" {
		t.Errorf("countdown = %q, want %q", view.TimeLeft, "2d 2h")
	}
}

func TestCurrentGameweekNoActiveRound(t *testing.T) {
	svc, _, _ := newFixturesService(t, predictapi.WithNoGameweek())

	state := svc.CurrentGameweek(context.Background(), "tok", "sess-1")
	if state.Status != viewstate.Empty {
		t.Fatalf("status = %v, want Empty", state.Status)
	}
}

func TestCurrentGameweekMergesDrafts(t *testing.T) {
	svc, _, _ := newFixturesService(t, predictapi.WithFixtures(testFixtures()))

	svc.SetDraftScore("sess-1", 11, "2", "1")
	svc.ToggleBanker("sess-1", 11)

	state := svc.CurrentGameweek(context.Background(), "tok", "sess-1")
	if state.Status != viewstate.Ready {
		t.Fatalf("status = %v, want Ready", state.Status)
	}

	fv := state.Data.Days[0].Fixtures[0]
	if fv.DraftHome != "2" || fv.DraftAway != "1" || !fv.DraftBanker {
		t.Errorf("draft not merged: %+v", fv)
	}
	if !state.Data.HasBanker {
		t.Error("expected HasBanker")
	}
	if state.Data.Completed != 1 {
		t.Errorf("completed = %d, want 1", state.Data.Completed)
	}
}

func TestCurrentGameweekSeedsSavedPredictions(t *testing.T) {
	saved := []predictapi.Prediction{{Fixture: 12, HomeScore: 3, AwayScore: 0, IsBanker: true}}
	svc, _, _ := newFixturesService(t,
		predictapi.WithFixtures(testFixtures()),
		predictapi.WithPredictions(saved),
	)

	state := svc.CurrentGameweek(context.Background(), "tok", "sess-1")
	if state.Status != viewstate.Ready {
		t.Fatalf("status = %v, want Ready", state.Status)
	}

	fv := state.Data.Days[0].Fixtures[1]
	if fv.ID != 12 {
		t.Fatalf("unexpected fixture order: %+v", fv)
	}
	if fv.DraftHome != "3" || fv.DraftAway != "0" || !fv.DraftBanker {
		t.Errorf("saved prediction not seeded: %+v", fv)
	}
}

func TestSavePredictionsCoversEveryFixture(t *testing.T) {
	svc, mock, _ := newFixturesService(t, predictapi.WithFixtures(testFixtures()))

	svc.SetDraftScore("sess-1", 12, "2", "1")
	svc.ToggleBanker("sess-1", 12)

	msg, err := svc.SavePredictions(context.Background(), "tok", "sess-1", []int{13, 11, 12})
	if err != nil {
		t.Fatalf("SavePredictions() error = %v", err)
	}
	if msg == "" {
		t.Error("expected a confirmation message")
	}

	if len(mock.Saved) != 3 {
		t.Fatalf("saved %d predictions, want 3", len(mock.Saved))
	}
	// Untouched fixtures are submitted as 0-0 in fixture order.
	want := []predictapi.Prediction{
		{Fixture: 11, HomeScore: 0, AwayScore: 0},
		{Fixture: 12, HomeScore: 2, AwayScore: 1, IsBanker: true},
		{Fixture: 13, HomeScore: 0, AwayScore: 0},
	}
	for i, p := range want {
		if mock.Saved[i] != p {
			t.Errorf("saved[%d] = %+v, want %+v", i, mock.Saved[i], p)
		}
	}
}

func TestSavePredictionsFailure(t *testing.T) {
	svc, _, _ := newFixturesService(t,
		predictapi.WithFixtures(testFixtures()),
		predictapi.WithSaveResult("", &predictapi.RequestError{Status: 400, Message: "Prediction deadline has passed."}),
	)

	svc.SetDraftScore("sess-1", 11, "2", "1")

	_, err := svc.SavePredictions(context.Background(), "tok", "sess-1", []int{11, 12, 13})
	if err == nil {
		t.Fatal("expected error")
	}
	reqErr, ok := predictapi.AsRequestError(err)
	if !ok || reqErr.Message != "Prediction deadline has passed." {
		t.Errorf("unexpected error: %v", err)
	}

	// Drafts survive a failed save so the user can retry.
	state := svc.CurrentGameweek(context.Background(), "tok", "sess-1")
	if fv := state.Data.Days[0].Fixtures[0]; fv.DraftHome != "2" {
		t.Errorf("draft lost after failed save: %+v", fv)
	}
}

type captureBroadcaster struct{ calls int }

func (b *captureBroadcaster) BroadcastPredictionsSaved(gameweek string) { b.calls++ }

func TestSavePredictionsNotifiesClients(t *testing.T) {
	svc, _, _ := newFixturesService(t, predictapi.WithFixtures(testFixtures()))
	b := &captureBroadcaster{}
	svc.SetBroadcaster(b)

	if _, err := svc.SavePredictions(context.Background(), "tok", "sess-1", []int{11, 12, 13}); err != nil {
		t.Fatalf("SavePredictions() error = %v", err)
	}
	if b.calls != 1 {
		t.Errorf("broadcast calls = %d, want 1", b.calls)
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{50 * time.Hour, "2d 2h"},
		{3*time.Hour + 20*time.Minute, "3h 20m"},
		{45 * time.Minute, "45m"},
		{0, "Deadline passed"},
		{-time.Hour, "Deadline passed"},
	}
	for _, tt := range tests {
		if got := FormatCountdown(tt.d); got != tt.want {
			t.Errorf("FormatCountdown(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
