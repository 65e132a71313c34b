package services

import (
	"context"
	"math"

	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/models"
	"github.com/patrickashi/vi-predict/internal/viewstate"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

// StatsService implements StatsServicer. All figures are computed by the
// backend; this service only reshapes and rounds them for display.
type StatsService struct {
	log    logger.Logger
	client predictapi.Client
}

func NewStatsService(log logger.Logger, client predictapi.Client) *StatsService {
	return &StatsService{log: log, client: client}
}

func (s *StatsService) Dashboard(ctx context.Context, token string) viewstate.State[models.DashboardView] {
	return viewstate.Fetch(ctx, func(ctx context.Context) (models.DashboardView, error) {
		data, err := s.client.DashboardStats(ctx, token)
		if err != nil {
			return models.DashboardView{}, err
		}

		view := models.DashboardView{
			TotalPoints:    data.CurrentSeasonStats.TotalPoints,
			Accuracy:       roundPercent(data.CurrentSeasonStats.Accuracy),
			ExactScores:    data.CurrentSeasonStats.ExactScores,
			CorrectResults: data.CurrentSeasonStats.CorrectResults,
			GlobalRank:     data.CurrentSeasonStats.GlobalRank,
		}
		for _, gw := range data.RecentGameweeks {
			view.RecentWeeks = append(view.RecentWeeks, models.RecentWeek{
				Gameweek: gw.Gameweek,
				Points:   gw.Points,
				Accuracy: roundPercent(gw.Accuracy),
			})
		}
		for _, t := range data.HotTeams {
			view.HotTeams = append(view.HotTeams, models.TeamForm{Team: t.Team, Accuracy: t.Accuracy.String()})
		}
		for _, t := range data.ColdTeams {
			view.ColdTeams = append(view.ColdTeams, models.TeamForm{Team: t.Team, Accuracy: t.Accuracy.String()})
		}
		return view, nil
	})
}

func (s *StatsService) GameweekResults(ctx context.Context, token string, gameweek int) viewstate.State[models.ResultsView] {
	return viewstate.Fetch(ctx, func(ctx context.Context) (models.ResultsView, error) {
		data, err := s.client.GameweekUserStats(ctx, token, gameweek)
		if err != nil {
			return models.ResultsView{}, err
		}

		view := models.ResultsView{
			Gameweek:           gameweek,
			TotalPoints:        data.UserStats.TotalPoints,
			CorrectPredictions: data.UserStats.CorrectResults,
			CorrectScores:      data.UserStats.ExactScores,
			WrongResults:       data.UserStats.WrongResults,
			Accuracy:           roundPercent(data.UserStats.Accuracy),
			HighestPoints:      data.GlobalBenchmarks.HighestPoints,
			AveragePoints:      roundPercent(data.GlobalBenchmarks.AveragePoints),
		}
		for _, m := range data.Matches {
			view.Matches = append(view.Matches, models.ResultRow{
				FixtureID:     m.FixtureID,
				HomeTeam:      m.HomeTeam,
				AwayTeam:      m.AwayTeam,
				HomeScore:     m.ActualHomeScore,
				AwayScore:     m.ActualAwayScore,
				PredictedHome: m.PredictedHomeScore,
				PredictedAway: m.PredictedAwayScore,
				Points:        m.PointsEarned,
				Banker:        m.IsBanker,
				Result:        m.ResultStatus,
			})
		}
		return view, nil
	}, viewstate.NotFoundAsEmpty())
}

// roundPercent rounds a server-sent figure like "35.70" to the nearest whole
// number for the stat cards.
func roundPercent(v predictapi.FlexString) int {
	return int(math.Round(v.Float64()))
}
