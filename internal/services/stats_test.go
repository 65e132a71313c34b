package services

import (
	"context"
	"testing"

	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/viewstate"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

func TestDashboardRoundsServerFigures(t *testing.T) {
	data := &predictapi.DashboardData{
		CurrentSeasonStats: predictapi.SeasonStats{
			TotalPoints:    124,
			Accuracy:       "35.70",
			ExactScores:    6,
			CorrectResults: 21,
			GlobalRank:     1543,
		},
		RecentGameweeks: []predictapi.GameweekSummary{
			{Gameweek: 4, Points: 18, Accuracy: "62.5"},
			{Gameweek: 3, Points: 9, Accuracy: "33.33"},
		},
		HotTeams:  []predictapi.TeamAccuracy{{Team: "Arsenal", Accuracy: "80.0"}},
		ColdTeams: []predictapi.TeamAccuracy{{Team: "Spurs", Accuracy: "12.5"}},
	}
	svc := NewStatsService(logger.Noop{}, predictapi.NewMockClient(predictapi.WithDashboard(data)))

	state := svc.Dashboard(context.Background(), "tok")
	if state.Status != viewstate.Ready {
		t.Fatalf("status = %v, want Ready (err: %v)", state.Status, state.Err)
	}

	view := state.Data
	if view.Accuracy != 36 {
		t.Errorf("accuracy = %d, want 36", view.Accuracy)
	}
	if view.TotalPoints != 124 || view.GlobalRank != 1543 {
		t.Errorf("season stats not mapped: %+v", view)
	}
	if len(view.RecentWeeks) != 2 {
		t.Fatalf("recent weeks = %d, want 2", len(view.RecentWeeks))
	}
	if view.RecentWeeks[0].Accuracy != 63 {
		t.Errorf("recent accuracy = %d, want 63", view.RecentWeeks[0].Accuracy)
	}
	if len(view.HotTeams) != 1 || view.HotTeams[0].Accuracy != "80.0" {
		t.Errorf("hot teams not mapped: %+v", view.HotTeams)
	}
}

func TestDashboardFailure(t *testing.T) {
	svc := NewStatsService(logger.Noop{}, predictapi.NewMockClient(
		predictapi.WithDashboardError(&predictapi.RequestError{Status: 503, Message: "could not reach the server"}),
	))

	state := svc.Dashboard(context.Background(), "tok")
	if state.Status != viewstate.Failed {
		t.Fatalf("status = %v, want Failed", state.Status)
	}
	if state.Message() != "could not reach the server" {
		t.Errorf("message = %q", state.Message())
	}
}

func TestGameweekResults(t *testing.T) {
	data := &predictapi.GameweekStats{
		UserStats: predictapi.UserStats{
			TotalPoints:    14,
			CorrectResults: 4,
			ExactScores:    2,
			WrongResults:   3,
			Accuracy:       "57.14",
		},
		GlobalBenchmarks: predictapi.GlobalBenchmarks{HighestPoints: 21, AveragePoints: "9.6"},
		Matches: []predictapi.MatchResult{
			{
				FixtureID:          11,
				HomeTeam:           "Arsenal",
				AwayTeam:           "Chelsea",
				ActualHomeScore:    2,
				ActualAwayScore:    1,
				PredictedHomeScore: 2,
				PredictedAwayScore: 1,
				PointsEarned:       6,
				IsBanker:           true,
				ResultStatus:       "exact",
			},
		},
	}
	svc := NewStatsService(logger.Noop{}, predictapi.NewMockClient(predictapi.WithGameweekStats(data)))

	state := svc.GameweekResults(context.Background(), "tok", 4)
	if state.Status != viewstate.Ready {
		t.Fatalf("status = %v, want Ready (err: %v)", state.Status, state.Err)
	}

	view := state.Data
	if view.Gameweek != 4 || view.TotalPoints != 14 || view.Accuracy != 57 {
		t.Errorf("stats not mapped: %+v", view)
	}
	if view.HighestPoints != 21 || view.AveragePoints != 10 {
		t.Errorf("benchmarks not mapped: %+v", view)
	}
	if len(view.Matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(view.Matches))
	}
	m := view.Matches[0]
	if m.Result != "exact" || !m.Banker || m.Points != 6 {
		t.Errorf("match row not mapped: %+v", m)
	}
}

func TestGameweekResultsNotPlayedYet(t *testing.T) {
	svc := NewStatsService(logger.Noop{}, predictapi.NewMockClient(
		predictapi.WithStatsError(&predictapi.RequestError{Status: 404, Message: "No stats for this gameweek."}),
	))

	state := svc.GameweekResults(context.Background(), "tok", 38)
	if state.Status != viewstate.Empty {
		t.Fatalf("status = %v, want Empty", state.Status)
	}
}
