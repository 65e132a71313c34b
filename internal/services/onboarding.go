package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

// OnboardingService implements OnboardingServicer.
type OnboardingService struct {
	log    logger.Logger
	client predictapi.Client
}

func NewOnboardingService(log logger.Logger, client predictapi.Client) *OnboardingService {
	return &OnboardingService{log: log, client: client}
}

func (s *OnboardingService) Status(ctx context.Context, token string) (bool, error) {
	return s.client.OnboardingStatus(ctx, token)
}

func (s *OnboardingService) Countries(ctx context.Context, token string) ([]predictapi.Country, error) {
	return s.client.Countries(ctx, token)
}

func (s *OnboardingService) SearchClubs(ctx context.Context, token, search string) ([]predictapi.Club, error) {
	return s.client.Clubs(ctx, token, strings.TrimSpace(search))
}

func (s *OnboardingService) Preferences(ctx context.Context, token string) (*predictapi.Preferences, error) {
	return s.client.Preferences(ctx, token)
}

// Complete records the chosen country and favourite club. Both picks are
// required; users who do not want to choose use Skip instead.
func (s *OnboardingService) Complete(ctx context.Context, token string, countryID, clubID int) error {
	if countryID <= 0 || clubID <= 0 {
		return fmt.Errorf("select a country and a favourite club")
	}
	if err := s.client.CompleteOnboarding(ctx, token, countryID, clubID); err != nil {
		return err
	}
	s.log.Info("onboarding completed", "country_id", countryID, "club_id", clubID)
	return nil
}

func (s *OnboardingService) Skip(ctx context.Context, token string) error {
	return s.client.SkipOnboarding(ctx, token)
}
