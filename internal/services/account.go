package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/models"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

// AccountService implements AccountServicer against the remote prediction API.
type AccountService struct {
	log    logger.Logger
	client predictapi.Client
}

func NewAccountService(log logger.Logger, client predictapi.Client) *AccountService {
	return &AccountService{log: log, client: client}
}

// SignIn exchanges credentials for an access token and reports whether the
// account has completed onboarding, so the caller can pick a landing page.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (string, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", false, fmt.Errorf("email and password are required")
	}

	token, err := s.client.SignIn(ctx, email, password)
	if err != nil {
		s.log.Warn("sign in failed", "email", email, "error", err)
		return "", false, err
	}

	onboarded, err := s.Status(ctx, token)
	if err != nil {
		// The token is unusable if we cannot tell where to land; discard it.
		s.log.Warn("onboarding status check failed after sign in", "error", err)
		return "", false, err
	}

	s.log.Info("user signed in", "email", email, "onboarded", onboarded)
	return token, onboarded, nil
}

func (s *AccountService) SignUp(ctx context.Context, req predictapi.SignUpRequest) error {
	if req.Password != req.PasswordConfirm {
		return fmt.Errorf("passwords do not match")
	}
	return s.client.SignUp(ctx, req)
}

func (s *AccountService) VerifyOTP(ctx context.Context, email, code string) error {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return fmt.Errorf("enter the 6-digit code")
	}
	return s.client.VerifyOTP(ctx, email, code)
}

func (s *AccountService) ResendOTP(ctx context.Context, email string) error {
	return s.client.ResendOTP(ctx, email)
}

func (s *AccountService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("email is required")
	}
	return s.client.ForgotPassword(ctx, email)
}

func (s *AccountService) ResetPassword(ctx context.Context, req predictapi.ResetPasswordRequest) (string, error) {
	if req.NewPassword != req.NewPasswordConfirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return s.client.ResetPassword(ctx, req)
}

// SignOut revokes the token on the backend. Failures are logged and swallowed;
// the local session is cleared regardless.
func (s *AccountService) SignOut(ctx context.Context, token string) {
	if err := s.client.SignOut(ctx, token); err != nil {
		s.log.Debug("remote sign out failed", "error", err)
	}
}

// DisplayName returns the best available name for the header greeting,
// falling back to "User" when the profile cannot be loaded.
func (s *AccountService) DisplayName(ctx context.Context, token string) string {
	profile, err := s.client.Profile(ctx, token)
	if err != nil {
		s.log.Debug("profile fetch for header failed", "error", err)
		return "User"
	}
	if name := strings.TrimSpace(profile.FirstName); name != "" {
		return name
	}
	if profile.Username != "" {
		return profile.Username
	}
	return "User"
}

func (s *AccountService) Profile(ctx context.Context, token string) (*models.ProfileView, error) {
	profile, err := s.client.Profile(ctx, token)
	if err != nil {
		return nil, err
	}
	return &models.ProfileView{
		Username:  profile.Username,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	}, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, token, firstName, lastName string) (string, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" && lastName == "" {
		return "", fmt.Errorf("nothing to update")
	}
	return s.client.UpdateProfile(ctx, token, firstName, lastName)
}

func (s *AccountService) ChangePassword(ctx context.Context, token, current, newPassword, confirm string) (string, error) {
	if current == "" || newPassword == "" {
		return "", fmt.Errorf("all password fields are required")
	}
	if newPassword != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return s.client.ChangePassword(ctx, token, predictapi.ChangePasswordRequest{
		CurrentPassword:    current,
		NewPassword:        newPassword,
		NewPasswordConfirm: confirm,
	})
}

// Status is shared with the onboarding flow so sign-in can route new users.
func (s *AccountService) Status(ctx context.Context, token string) (bool, error) {
	return s.client.OnboardingStatus(ctx, token)
}
