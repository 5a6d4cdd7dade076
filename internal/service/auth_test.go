package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/pkg/supabase"
)

type fakeAuthProvider struct {
	session  *supabase.Session
	user     *supabase.User
	err      error
	metadata map[string]interface{}
	token    string
}

func (f *fakeAuthProvider) SignInWithPassword(_ context.Context, _, _ string) (*supabase.Session, error) {
	return f.session, f.err
}

func (f *fakeAuthProvider) SignUp(_ context.Context, _, _ string, metadata map[string]interface{}) (*supabase.Session, error) {
	f.metadata = metadata
	return f.session, f.err
}

func (f *fakeAuthProvider) RefreshSession(_ context.Context, token string) (*supabase.Session, error) {
	f.token = token
	return f.session, f.err
}

func (f *fakeAuthProvider) SignOut(_ context.Context, token string) error {
	f.token = token
	return f.err
}

func (f *fakeAuthProvider) VerifyToken(_ context.Context, token string) (*supabase.User, error) {
	f.token = token
	return f.user, f.err
}

func (f *fakeAuthProvider) UpdateUserMetadata(_ context.Context, token string, metadata map[string]interface{}) (*supabase.User, error) {
	f.token = token
	f.metadata = metadata
	return f.user, f.err
}

func testSession() *supabase.Session {
	return &supabase.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    3600,
		User: supabase.User{
			ID:           testUserID,
			Email:        "parent@example.com",
			UserMetadata: map[string]interface{}{"display_name": "Sam"},
			CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
}

func TestLogin(t *testing.T) {
	svc := NewAuthService(&fakeAuthProvider{session: testSession()})

	resp, err := svc.Login(context.Background(), &models.LoginRequest{Email: "parent@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, testUserID, resp.User.ID)
	assert.Equal(t, "Sam", resp.User.DisplayName)
}

func TestLogin_MapsRejections(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "invalid grant",
			err:     &supabase.Error{StatusCode: http.StatusBadRequest, Code: "invalid_grant", Message: "Invalid login credentials"},
			wantErr: ErrUnauthorized,
		},
		{
			name:    "expired token",
			err:     &supabase.Error{StatusCode: http.StatusUnauthorized},
			wantErr: ErrUnauthorized,
		},
		{
			name:    "already registered",
			err:     &supabase.Error{StatusCode: http.StatusUnprocessableEntity, Code: "user_already_exists"},
			wantErr: ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(&fakeAuthProvider{err: tt.err})
			_, err := svc.Login(context.Background(), &models.LoginRequest{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogin_TransportErrorIsNotUnauthorized(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	svc := NewAuthService(&fakeAuthProvider{err: boom})

	_, err := svc.Login(context.Background(), &models.LoginRequest{})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestSignup_StoresDisplayName(t *testing.T) {
	provider := &fakeAuthProvider{session: &supabase.Session{User: supabase.User{ID: testUserID}}}
	svc := NewAuthService(provider)

	resp, err := svc.Signup(context.Background(), &models.SignupRequest{
		Email:       "parent@example.com",
		Password:    "secret1",
		DisplayName: "Sam",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"display_name": "Sam"}, provider.metadata)
	assert.Empty(t, resp.AccessToken, "unconfirmed signups carry no session")
}

func TestRefreshLogoutAndProfile(t *testing.T) {
	provider := &fakeAuthProvider{session: testSession(), user: &testSession().User}
	svc := NewAuthService(provider)

	_, err := svc.Refresh(context.Background(), "refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "refresh-token", provider.token)

	require.NoError(t, svc.Logout(context.Background(), "access-token"))
	assert.Equal(t, "access-token", provider.token)

	user, err := svc.GetUser(context.Background(), "access-token")
	require.NoError(t, err)
	assert.Equal(t, "parent@example.com", user.Email)

	_, err = svc.UpdateProfile(context.Background(), "access-token", &models.UpdateProfileRequest{DisplayName: "Alex"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"display_name": "Alex"}, provider.metadata)
}
