package services

import (
	"context"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/viewstate"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

// LeaguesService implements LeaguesServicer.
type LeaguesService struct {
	log    logger.Logger
	client predictapi.Client
}

func NewLeaguesService(log logger.Logger, client predictapi.Client) *LeaguesService {
	return &LeaguesService{log: log, client: client}
}

func (s *LeaguesService) Overview(ctx context.Context, token string) viewstate.State[*predictapi.LeagueOverview] {
	return viewstate.Fetch(ctx, func(ctx context.Context) (*predictapi.LeagueOverview, error) {
		return s.client.LeaguesOverview(ctx, token)
	})
}

func (s *LeaguesService) Create(ctx context.Context, token string, req predictapi.CreateLeagueRequest) (*predictapi.League, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, "", fmt.Errorf("league name is required")
	}
	if req.Type != "public" && req.Type != "private" {
		return nil, "", fmt.Errorf("league type must be public or private")
	}

	league, message, err := s.client.CreateLeague(ctx, token, req)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("league created", "league_id", league.ID, "type", league.Type)
	return league, message, nil
}

// Join joins a private league by invite code or a public league by id.
// Invite codes are case-insensitive on entry and upper-cased before sending.
func (s *LeaguesService) Join(ctx context.Context, token, joinType, code, leagueID, message string) (string, error) {
	req := predictapi.JoinLeagueRequest{Message: strings.TrimSpace(message)}

	switch joinType {
	case "private":
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			return "", fmt.Errorf("invite code is required")
		}
		req.Code = code
	case "public":
		id, err := parseLeagueID(leagueID)
		if err != nil {
			return "", err
		}
		req.LeagueID = id
	default:
		return "", fmt.Errorf("unknown join type %q", joinType)
	}

	return s.client.JoinLeague(ctx, token, req)
}

func parseLeagueID(raw string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d", &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("select a league to join")
	}
	return id, nil
}

func (s *LeaguesService) Detail(ctx context.Context, token string, id int) viewstate.State[*predictapi.LeagueDetail] {
	return viewstate.Fetch(ctx, func(ctx context.Context) (*predictapi.LeagueDetail, error) {
		return s.client.League(ctx, token, id)
	})
}

// InviteQR renders a league's invite link as a PNG QR code. Only private
// leagues carry an invite code.
func (s *LeaguesService) InviteQR(ctx context.Context, token string, id int, baseURL string) ([]byte, error) {
	detail, err := s.client.League(ctx, token, id)
	if err != nil {
		return nil, err
	}
	if detail.League.Code == "" {
		return nil, fmt.Errorf("league has no invite code")
	}

	inviteURL := fmt.Sprintf("%s/leagues/join?code=%s", strings.TrimRight(baseURL, "/"), detail.League.Code)
	png, err := qrcode.Encode(inviteURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}
