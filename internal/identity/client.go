// Package identity implements the client for the external identity provider
// (a Supabase/GoTrue auth service). The provider is authoritative for
// credentials and token issuance; this client only calls its REST API.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
)

// Config holds connection settings for the identity provider.
type Config struct {
	// BaseURL is the project URL, e.g. https://xyz.supabase.co.
	BaseURL string
	// AnonKey is the public API key used for end-user auth endpoints.
	AnonKey string
	// ServiceKey is the privileged key used for the admin API.
	ServiceKey string
	// JWTSecret optionally enables local verification of access tokens.
	// When empty, tokens are verified remotely via GET /auth/v1/user.
	JWTSecret string
}

// Client talks to the identity provider's auth API. It is safe for
// concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates an identity provider client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
	}
}

// User is an identity-provider account.
type User struct {
	ID           string     `json:"id"`
	Aud          string     `json:"aud,omitempty"`
	Role         string     `json:"role,omitempty"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
}

// Session is an authenticated provider session returned by the password grant.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Error is a failure reported by the identity provider.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ListUsersParams are query parameters for the admin user listing.
type ListUsersParams struct {
	Page    int `url:"page,omitempty"`
	PerPage int `url:"per_page,omitempty"`
}

// credentials is the request body shared by signup and the password grant.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp creates a new provider account with the given credentials.
func (c *Client) SignUp(ctx context.Context, email, password string) (*User, error) {
	// Depending on provider settings the signup endpoint returns either the
	// bare user or a full session containing it.
	var resp struct {
		User
		Session *Session `json:"session,omitempty"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/v1/signup", c.cfg.AnonKey, "",
		credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ID == "" && resp.Session != nil {
		return &resp.Session.User, nil
	}
	return &resp.User, nil
}

// SignInWithPassword exchanges email/password credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", c.cfg.AnonKey, "",
		credentials{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetUser resolves an access token to its account by asking the provider.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/auth/v1/user", c.cfg.AnonKey, accessToken, nil, &user)
	if err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "no user for token"}
	}
	return &user, nil
}

// UserFromToken validates an access token and returns the identity it
// carries. With a configured JWT secret the token is verified locally;
// otherwise the provider is consulted.
func (c *Client) UserFromToken(ctx context.Context, accessToken string) (*User, error) {
	if c.cfg.JWTSecret != "" {
		return c.parseAccessToken(accessToken)
	}
	return c.GetUser(ctx, accessToken)
}

// ListUsers fetches accounts from the admin listing using the service key.
func (c *Client) ListUsers(ctx context.Context, params ListUsersParams) ([]User, error) {
	path := "/auth/v1/admin/users"
	values, err := query.Values(params)
	if err != nil {
		return nil, fmt.Errorf("encode admin listing params: %w", err)
	}
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, path, c.cfg.ServiceKey, c.cfg.ServiceKey, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ListUsersByEmail returns the admin-listing accounts matching the given
// email. The admin API has no server-side email filter, so the full listing
// is filtered here.
func (c *Client) ListUsersByEmail(ctx context.Context, email string) ([]User, error) {
	users, err := c.ListUsers(ctx, ListUsersParams{PerPage: 1000})
	if err != nil {
		return nil, err
	}
	matched := make([]User, 0, 1)
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

// Health checks that the provider's auth service is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/auth/v1/health", c.cfg.AnonKey, "", nil, nil)
}

// Close releases idle connections held against the provider. The server
// holds no user session of its own, so there is nothing to revoke remotely.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// do performs a provider API call and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path, apiKey, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("apikey", apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

// parseError extracts the provider's error message from a failed response.
// GoTrue reports errors under several different keys depending on endpoint
// and version.
func parseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorField       string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	message := ""
	if err := json.Unmarshal(data, &payload); err == nil {
		for _, candidate := range []string{payload.Message, payload.Msg, payload.ErrorDescription, payload.ErrorField} {
			if candidate != "" {
				message = candidate
				break
			}
		}
	}
	if message == "" {
		message = fmt.Sprintf("identity provider returned status %d", resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: message}
}
