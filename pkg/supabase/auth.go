package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// User represents a Supabase user
type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	CreatedAt    time.Time              `json:"created_at"`
}

// DisplayName returns the display_name user metadata attribute
func (u *User) DisplayName() string {
	if u == nil || u.UserMetadata == nil {
		return ""
	}
	name, _ := u.UserMetadata["display_name"].(string)
	return name
}

// Session is a GoTrue token response
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

// SignInWithPassword exchanges email and password for a session
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  map[string]interface{}{"grant_type": "password"},
		body: map[string]string{
			"email":    email,
			"password": password,
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeSession(body)
}

// SignUp registers a new user. metadata is stored as user_metadata.
// When email confirmation is enabled the returned session has no tokens.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*Session, error) {
	payload := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		payload["data"] = metadata
	}

	body, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   payload,
	})
	if err != nil {
		return nil, err
	}

	// Without auto-confirm GoTrue returns the bare user object
	var tokenOnly struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenOnly); err != nil {
		return nil, fmt.Errorf("failed to decode signup response: %w", err)
	}
	if tokenOnly.AccessToken == "" {
		var user User
		if err := json.Unmarshal(body, &user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		return &Session{User: user}, nil
	}

	return decodeSession(body)
}

// RefreshSession exchanges a refresh token for a new session
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	body, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  map[string]interface{}{"grant_type": "refresh_token"},
		body:   map[string]string{"refresh_token": refreshToken},
	})
	if err != nil {
		return nil, err
	}
	return decodeSession(body)
}

// SignOut revokes the refresh tokens of the session behind accessToken
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		token:  accessToken,
	})
	return err
}

// VerifyToken verifies a JWT token with Supabase
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/v1/user",
		token:  token,
	})
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

// UpdateUserMetadata merges metadata into the user_metadata of the user
// behind accessToken and returns the updated user
func (c *Client) UpdateUserMetadata(ctx context.Context, accessToken string, metadata map[string]interface{}) (*User, error) {
	body, err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/auth/v1/user",
		token:  accessToken,
		body:   map[string]interface{}{"data": metadata},
	})
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

func decodeSession(body []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}
