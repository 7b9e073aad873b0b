package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User represents an account as returned by the backend
type User struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Attributes       map[string]string `json:"attributes,omitempty"`
	IsSetupCompleted *bool             `json:"is_setup_completed,omitempty"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	User             User   `json:"user"`
	Token            string `json:"token"`
	AccessToken      string `json:"access_token,omitempty"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	IsSetupCompleted *bool  `json:"is_setup_completed,omitempty"`
}

// BearerToken returns the issued token. Older backends send access_token.
func (r *AuthResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// SetupCompleted reports the onboarding flag from the response or its user.
func (r *AuthResponse) SetupCompleted() *bool {
	if r.IsSetupCompleted != nil {
		return r.IsSetupCompleted
	}
	return r.User.IsSetupCompleted
}

// Login authenticates. The returned token is not adopted; callers decide
// with SetToken once the response is usable.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	if err := parseResponse(resp, &authResp, credentialStatus); err != nil {
		return nil, err
	}

	return &authResp, nil
}

// Register creates an account; the backend signs it in directly
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/register", RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	if err := parseResponse(resp, &authResp, credentialStatus); err != nil {
		return nil, err
	}

	return &authResp, nil
}

// Logout ends the session on the backend and forgets the token
func (c *Client) Logout(ctx context.Context) error {
	defer c.SetToken("")

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil, sessionStatus)
}

// CurrentUser retrieves the user the current token belongs to
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := parseResponse(resp, &user, sessionStatus); err != nil {
		return nil, err
	}
	return &user, nil
}

// Probe requests the current-user endpoint without a token and returns the
// HTTP status. Any response means the backend is reachable.
func (c *Client) Probe(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+c.Prefix+"/auth/me", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, session.WrapError(session.KindTransportUnavailable, "auth backend unreachable", err, nil)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	return resp.StatusCode, nil
}
