// Package testutil provides shared test doubles and fixtures.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"inkwell/internal/identity"

	"github.com/google/uuid"
)

// FakeIdentity is an in-memory stand-in for the identity provider's auth
// API, served over httptest. It covers the endpoints the client calls:
// signup, password grant, user lookup, the admin listing and health.
type FakeIdentity struct {
	ServiceKey string

	mu       sync.Mutex
	server   *httptest.Server
	accounts map[string]*fakeAccount // keyed by lowercase email
	tokens   map[string]string       // access token -> lowercase email
}

type fakeAccount struct {
	User     identity.User
	Password string
}

// NewFakeIdentity starts the fake provider.
func NewFakeIdentity() *FakeIdentity {
	f := &FakeIdentity{
		ServiceKey: "test-service-key",
		accounts:   make(map[string]*fakeAccount),
		tokens:     make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/auth/v1/signup", f.handleSignup)
	mux.HandleFunc("/auth/v1/token", f.handleToken)
	mux.HandleFunc("/auth/v1/user", f.handleUser)
	mux.HandleFunc("/auth/v1/admin/users", f.handleAdminUsers)

	f.server = httptest.NewServer(mux)
	return f
}

// URL returns the provider base URL.
func (f *FakeIdentity) URL() string {
	return f.server.URL
}

// Close shuts the fake provider down.
func (f *FakeIdentity) Close() {
	f.server.Close()
}

// Client returns an identity client configured against the fake provider.
func (f *FakeIdentity) Client() *identity.Client {
	return identity.NewClient(identity.Config{
		BaseURL:    f.URL(),
		AnonKey:    "test-anon-key",
		ServiceKey: f.ServiceKey,
	})
}

// AddUser registers an account directly in the provider, bypassing signup.
func (f *FakeIdentity) AddUser(email, password string) identity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(email, password)
}

func (f *FakeIdentity) addUserLocked(email, password string) identity.User {
	now := time.Now().UTC()
	user := identity.User{
		ID:        uuid.NewString(),
		Aud:       "authenticated",
		Role:      "authenticated",
		Email:     email,
		CreatedAt: &now,
	}
	f.accounts[strings.ToLower(email)] = &fakeAccount{User: user, Password: password}
	return user
}

// IssueToken mints a valid access token for a registered account.
func (f *FakeIdentity) IssueToken(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := "tok-" + uuid.NewString()
	f.tokens[token] = strings.ToLower(email)
	return token
}

func (f *FakeIdentity) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"msg": "Signup requires a valid email and password"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.accounts[strings.ToLower(req.Email)]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{"msg": "User already registered"})
		return
	}
	user := f.addUserLocked(req.Email, req.Password)
	writeJSON(w, http.StatusOK, user)
}

func (f *FakeIdentity) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("grant_type") != "password" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unsupported_grant_type"})
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[strings.ToLower(req.Email)]
	if !ok || account.Password != req.Password {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
		return
	}

	token := "tok-" + uuid.NewString()
	f.tokens[token] = strings.ToLower(req.Email)
	writeJSON(w, http.StatusOK, identity.Session{
		AccessToken:  token,
		TokenType:    "bearer",
		ExpiresIn:    3600,
		RefreshToken: "refresh-" + uuid.NewString(),
		User:         account.User,
	})
}

func (f *FakeIdentity) handleUser(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.tokens[token]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid JWT"})
		return
	}
	writeJSON(w, http.StatusOK, f.accounts[email].User)
}

func (f *FakeIdentity) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") != f.ServiceKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid service key"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]identity.User, 0, len(f.accounts))
	for _, account := range f.accounts {
		users = append(users, account.User)
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
