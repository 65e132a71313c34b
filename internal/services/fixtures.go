package services

import (
	"context"
	"fmt"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/patrickashi/vi-predict/internal/drafts"
	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/models"
	"github.com/patrickashi/vi-predict/internal/viewstate"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

// reconcileDelay is how long after a successful save the drafts are refreshed
// from the server copy.
const reconcileDelay = time.Second

// Broadcaster pushes updates to connected pages
type Broadcaster interface {
	BroadcastPredictionsSaved(gameweek string)
}

// FixturesService implements FixturesServicer. It owns the draft prediction
// sets and the merge of drafts into the fixtures page view.
type FixturesService struct {
	log         logger.Logger
	client      predictapi.Client
	drafts      *drafts.Store
	clock       clock.Clock
	broadcaster Broadcaster

	// loader sequences fixture-list fetches so a slow stale response can
	// never overwrite a fresher one. The list is shared across sessions and
	// also drives the deadline broadcast, so regressions would be visible
	// everywhere.
	loader *viewstate.Loader[*predictapi.FixturesData]
}

func NewFixturesService(log logger.Logger, client predictapi.Client, draftStore *drafts.Store, clk clock.Clock) *FixturesService {
	return &FixturesService{
		log:    log,
		client: client,
		drafts: draftStore,
		clock:  clk,
		loader: viewstate.NewLoader[*predictapi.FixturesData](viewstate.NotFoundAsEmpty()),
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *FixturesService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CurrentGameweek loads the fixtures page view. A 404 from the backend means
// no gameweek is open for predictions and renders as the empty state, not as
// an error.
func (s *FixturesService) CurrentGameweek(ctx context.Context, token, sessionID string) viewstate.State[models.GameweekView] {
	state := s.loader.Load(ctx, func(ctx context.Context) (*predictapi.FixturesData, error) {
		return s.client.CurrentFixtures(ctx, token)
	})
	if state.Status != viewstate.Ready {
		return viewstate.State[models.GameweekView]{Status: state.Status, Err: state.Err}
	}

	set := s.drafts.ForSession(sessionID)
	s.seedDrafts(ctx, token, set)

	return viewstate.State[models.GameweekView]{
		Status: viewstate.Ready,
		Data:   s.buildView(state.Data, set),
	}
}

// seedDrafts replaces the drafts with the saved predictions, if any. A fetch
// failure here is not fatal: the page still renders, with whatever drafts the
// session already holds.
func (s *FixturesService) seedDrafts(ctx context.Context, token string, set *drafts.Set) {
	saved, err := s.client.CurrentPredictions(ctx, token)
	if err != nil {
		s.log.Debug("saved predictions fetch failed", "error", err)
		return
	}
	if len(saved) > 0 {
		set.ReplaceFromServer(saved)
	}
}

func (s *FixturesService) buildView(data *predictapi.FixturesData, set *drafts.Set) models.GameweekView {
	entries := set.Entries()

	view := models.GameweekView{
		Number: data.Gameweek.Number.String(),
		Total:  len(data.Fixtures),
	}

	var dayIndex = make(map[string]int)
	for _, f := range data.Fixtures {
		entry := entries[f.ID]
		if entry.Banker {
			view.HasBanker = true
		}

		fv := models.FixtureView{
			ID:          f.ID,
			HomeTeam:    f.HomeTeam,
			AwayTeam:    f.AwayTeam,
			Kickoff:     f.MatchTime.Format("15:04"),
			HomeForm:    f.HomeTeamForm,
			AwayForm:    f.AwayTeamForm,
			DraftHome:   entry.Home,
			DraftAway:   entry.Away,
			DraftBanker: entry.Banker,
		}

		date := f.MatchTime.Format("Mon, 2 Jan")
		i, ok := dayIndex[date]
		if !ok {
			i = len(view.Days)
			dayIndex[date] = i
			view.Days = append(view.Days, models.MatchDay{Date: date})
		}
		view.Days[i].Fixtures = append(view.Days[i].Fixtures, fv)
	}

	view.Completed = set.Completed()

	if len(data.Fixtures) > 0 {
		deadline := data.Fixtures[0].PredictionDeadline
		view.Deadline = deadline.Format("Mon 2 Jan, 15:04")
		view.DeadlineAt = deadline
		view.TimeLeft = FormatCountdown(deadline.Sub(s.clock.Now()))
	}
	return view
}

// FormatCountdown renders a duration until deadline as a short countdown
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "Deadline passed"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// SetDraftScore records the score inputs for one fixture
func (s *FixturesService) SetDraftScore(sessionID string, fixtureID int, home, away string) {
	s.drafts.ForSession(sessionID).SetScore(fixtureID, home, away)
}

// ToggleBanker flips the banker flag on one fixture, clearing any other
func (s *FixturesService) ToggleBanker(sessionID string, fixtureID int) {
	s.drafts.ForSession(sessionID).ToggleBanker(fixtureID)
}

// DropDrafts discards a session's drafts on sign-out
func (s *FixturesService) DropDrafts(sessionID string) {
	s.drafts.Drop(sessionID)
}

// SavePredictions submits the session's drafts as one batch covering every
// fixture of the gameweek. A second save while one is in flight is rejected.
// On success the drafts are reconciled with the server copy after a short
// delay, and connected pages are notified.
func (s *FixturesService) SavePredictions(ctx context.Context, token, sessionID string, fixtureIDs []int) (string, error) {
	if len(fixtureIDs) == 0 {
		return "", fmt.Errorf("no fixtures to save")
	}

	set := s.drafts.ForSession(sessionID)
	if !set.BeginSubmit() {
		return "", fmt.Errorf("a save is already in progress")
	}
	defer set.EndSubmit()

	batch := set.Payload(fixtureIDs)
	message, err := s.client.SavePredictions(ctx, token, batch)
	if err != nil {
		s.log.Warn("save predictions failed", "fixtures", len(batch), "error", err)
		return "", err
	}

	s.log.Info("predictions saved", "fixtures", len(batch))
	if s.broadcaster != nil {
		s.broadcaster.BroadcastPredictionsSaved("")
	}

	go s.reconcile(token, set)

	if message == "" {
		message = "Predictions saved successfully!"
	}
	return message, nil
}

// reconcile refreshes the drafts from the server shortly after a save, so
// the page reflects any server-side normalisation. Failures are silent.
func (s *FixturesService) reconcile(token string, set *drafts.Set) {
	timer := s.clock.Timer(reconcileDelay)
	defer timer.Stop()
	<-timer.C

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	saved, err := s.client.CurrentPredictions(ctx, token)
	if err != nil {
		s.log.Debug("post-save reconcile failed", "error", err)
		return
	}
	set.ReplaceFromServer(saved)
}
