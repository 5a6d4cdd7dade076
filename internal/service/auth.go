package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/pkg/supabase"
)

// AuthProvider is the GoTrue surface the auth service needs.
// *supabase.Client satisfies it.
type AuthProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*supabase.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	VerifyToken(ctx context.Context, token string) (*supabase.User, error)
	UpdateUserMetadata(ctx context.Context, accessToken string, metadata map[string]interface{}) (*supabase.User, error)
}

type authService struct {
	provider AuthProvider
}

// NewAuthService creates a new auth service
func NewAuthService(provider AuthProvider) AuthService {
	return &authService{provider: provider}
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	session, err := s.provider.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		return nil, mapAuthError("login failed", err)
	}
	return toAuthResponse(session), nil
}

func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	var metadata map[string]interface{}
	if req.DisplayName != "" {
		metadata = map[string]interface{}{"display_name": req.DisplayName}
	}

	session, err := s.provider.SignUp(ctx, req.Email, req.Password, metadata)
	if err != nil {
		return nil, mapAuthError("signup failed", err)
	}
	return toAuthResponse(session), nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	session, err := s.provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		return nil, mapAuthError("refresh failed", err)
	}
	return toAuthResponse(session), nil
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		return mapAuthError("logout failed", err)
	}
	return nil
}

func (s *authService) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	user, err := s.provider.VerifyToken(ctx, accessToken)
	if err != nil {
		return nil, mapAuthError("failed to get user", err)
	}
	return toUser(user), nil
}

func (s *authService) UpdateProfile(ctx context.Context, accessToken string, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.provider.UpdateUserMetadata(ctx, accessToken, map[string]interface{}{
		"display_name": req.DisplayName,
	})
	if err != nil {
		return nil, mapAuthError("failed to update profile", err)
	}
	return toUser(user), nil
}

func toAuthResponse(session *supabase.Session) *models.AuthResponse {
	return &models.AuthResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		User:         *toUser(&session.User),
	}
}

func toUser(u *supabase.User) *models.User {
	return &models.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName(),
		CreatedAt:   u.CreatedAt,
	}
}

// mapAuthError translates GoTrue rejections into service sentinels and
// leaves transport failures wrapped as-is
func mapAuthError(op string, err error) error {
	var apiErr *supabase.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case apiErr.Code == "user_already_exists" || apiErr.Code == "email_exists" || apiErr.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", op, ErrEmailTaken)
	case apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	return fmt.Errorf("%s: %w", op, err)
}
