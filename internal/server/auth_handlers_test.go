package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	app, srv, _ := setupTestServer(t)

	tests := []struct {
		name           string
		requestBody    map[string]string
		expectedStatus int
		expectedError  string
		expectedCode   string
	}{
		{
			name: "Valid signup",
			requestBody: map[string]string{
				"email":    "alice@example.com",
				"password": "password123",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Missing email",
			requestBody: map[string]string{
				"password": "password123",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Email and password are required",
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "Missing password",
			requestBody: map[string]string{
				"email": "bob@example.com",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Email and password are required",
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "Duplicate email",
			requestBody: map[string]string{
				"email":    "alice@example.com",
				"password": "password456",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "User already exists with this email. Please login instead.",
			expectedCode:   "DUPLICATE_USER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodPost, "/signup", tt.requestBody, "")
			assert.Equal(t, tt.expectedStatus, status)

			if tt.expectedError != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.expectedError, body["error"])
				assert.Equal(t, tt.expectedCode, body["code"])
				return
			}

			assert.Equal(t, true, body["success"])
			user, ok := body["user"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "alice@example.com", user["email"])
			assert.NotEmpty(t, user["id"])
			assert.NotNil(t, user["auth"], "provider account should be attached")

			// The local row must carry the provider-issued id.
			local, err := srv.userRepo.GetByEmail(context.Background(), "alice@example.com")
			require.NoError(t, err)
			require.NotNil(t, local)
			assert.Equal(t, user["id"], local.ID)
		})
	}
}

func TestSignupLocalRowAlreadyExists(t *testing.T) {
	app, srv, _ := setupTestServer(t)

	// A local row with no matching provider account still blocks signup.
	require.NoError(t, srv.db.Exec(
		`INSERT INTO users (id, email, created_at, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		"orphan-id", "orphan@example.com").Error)

	status, body := doJSON(t, app, http.MethodPost, "/signup", map[string]string{
		"email":    "orphan@example.com",
		"password": "password123",
	}, "")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already exists with this email. Please login instead.", body["error"])
}

func TestSignin(t *testing.T) {
	app, srv, fake := setupTestServer(t)
	account := fake.AddUser("carol@example.com", "password123")

	status, body := doJSON(t, app, http.MethodPost, "/signin", map[string]string{
		"email":    "carol@example.com",
		"password": "password123",
	}, "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Signed in successfully", body["msg"])

	session, ok := body["session"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, session["access_token"])

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, account.ID, user["id"])

	// The provider knew the account but the local store did not; signin
	// creates the missing row.
	local, err := srv.userRepo.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Equal(t, "carol@example.com", local.Email)
}

func TestSigninBadCredentials(t *testing.T) {
	app, _, fake := setupTestServer(t)
	fake.AddUser("carol@example.com", "password123")

	status, body := doJSON(t, app, http.MethodPost, "/signin", map[string]string{
		"email":    "carol@example.com",
		"password": "wrong-password",
	}, "")

	// Provider rejections surface as 500 with the provider's message.
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid login credentials", body["error"])
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
}

func TestSigninMissingFields(t *testing.T) {
	app, _, _ := setupTestServer(t)

	status, body := doJSON(t, app, http.MethodPost, "/signin", map[string]string{
		"email": "carol@example.com",
	}, "")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email and password are required", body["error"])
}
