package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/viewstate"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

func TestCreateLeagueValidation(t *testing.T) {
	svc := NewLeaguesService(logger.Noop{}, predictapi.NewMockClient())

	tests := []struct {
		name    string
		req     predictapi.CreateLeagueRequest
		wantErr bool
	}{
		{"valid private", predictapi.CreateLeagueRequest{Name: "Office League", Type: "private"}, false},
		{"valid public", predictapi.CreateLeagueRequest{Name: "Open League", Type: "public", MaxMembers: 50}, false},
		{"missing name", predictapi.CreateLeagueRequest{Name: "  ", Type: "private"}, true},
		{"bad type", predictapi.CreateLeagueRequest{Name: "League", Type: "secret"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			league, _, err := svc.Create(context.Background(), "tok", tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if league == nil {
				t.Fatal("expected created league")
			}
		})
	}
}

func TestJoinPrivateUppercasesCode(t *testing.T) {
	mock := predictapi.NewMockClient()
	svc := NewLeaguesService(logger.Noop{}, mock)

	msg, err := svc.Join(context.Background(), "tok", "private", "  abc123 ", "", "let me in")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if msg == "" {
		t.Error("expected join message")
	}
	if mock.Joined.Code != "ABC123" {
		t.Errorf("code = %q, want %q", mock.Joined.Code, "ABC123")
	}
	if mock.Joined.LeagueID != 0 {
		t.Errorf("league_id = %d, want unset", mock.Joined.LeagueID)
	}
	if mock.Joined.Message != "let me in" {
		t.Errorf("message = %q, want %q", mock.Joined.Message, "let me in")
	}
}

func TestJoinPublicByID(t *testing.T) {
	mock := predictapi.NewMockClient()
	svc := NewLeaguesService(logger.Noop{}, mock)

	if _, err := svc.Join(context.Background(), "tok", "public", "", "42", ""); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if mock.Joined.LeagueID != 42 {
		t.Errorf("league_id = %d, want 42", mock.Joined.LeagueID)
	}
	if mock.Joined.Code != "" {
		t.Errorf("code = %q, want unset", mock.Joined.Code)
	}
}

func TestJoinValidation(t *testing.T) {
	svc := NewLeaguesService(logger.Noop{}, predictapi.NewMockClient())

	if _, err := svc.Join(context.Background(), "tok", "private", "   ", "", ""); err == nil {
		t.Error("expected error for blank code")
	}
	if _, err := svc.Join(context.Background(), "tok", "public", "", "nope", ""); err == nil {
		t.Error("expected error for bad league id")
	}
	if _, err := svc.Join(context.Background(), "tok", "club", "", "", ""); err == nil {
		t.Error("expected error for unknown join type")
	}
}

func TestJoinBackendRejection(t *testing.T) {
	mock := predictapi.NewMockClient(predictapi.WithJoinResult("", &predictapi.RequestError{
		Status:  400,
		Message: "Invalid league code.",
	}))
	svc := NewLeaguesService(logger.Noop{}, mock)

	_, err := svc.Join(context.Background(), "tok", "private", "WRONG1", "", "")
	if err == nil {
		t.Fatal("expected error")
	}
	reqErr, ok := predictapi.AsRequestError(err)
	if !ok || reqErr.Message != "Invalid league code." {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOverviewFailure(t *testing.T) {
	mock := predictapi.NewMockClient(predictapi.WithOverviewError(&predictapi.RequestError{
		Status:  500,
		Message: "request failed with status 500",
	}))
	svc := NewLeaguesService(logger.Noop{}, mock)

	state := svc.Overview(context.Background(), "tok")
	if state.Status != viewstate.Failed {
		t.Fatalf("status = %v, want Failed", state.Status)
	}
	if state.Message() != "request failed with status 500" {
		t.Errorf("message = %q", state.Message())
	}
}

func TestInviteQR(t *testing.T) {
	detail := &predictapi.LeagueDetail{
		League: predictapi.League{ID: 7, Name: "Office League", Type: "private", Code: "XK42PD"},
	}
	mock := predictapi.NewMockClient(predictapi.WithLeagueDetail(detail))
	svc := NewLeaguesService(logger.Noop{}, mock)

	png, err := svc.InviteQR(context.Background(), "tok", 7, "https://predict.example.com/")
	if err != nil {
		t.Fatalf("InviteQR() error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG output")
	}
}

func TestInviteQRForPublicLeague(t *testing.T) {
	detail := &predictapi.LeagueDetail{
		League: predictapi.League{ID: 8, Name: "Open League", Type: "public"},
	}
	mock := predictapi.NewMockClient(predictapi.WithLeagueDetail(detail))
	svc := NewLeaguesService(logger.Noop{}, mock)

	if _, err := svc.InviteQR(context.Background(), "tok", 8, "https://predict.example.com"); err == nil {
		t.Error("expected error for league without invite code")
	}
}
