package server

import (
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireAllowListedEmail(t *testing.T) {
	app, _, fake := setupTestServer(t)
	fake.AddUser("admin@inkwell.dev", "password123")
	fake.AddUser("mallory@example.com", "password123")
	adminToken := fake.IssueToken("admin@inkwell.dev")
	userToken := fake.IssueToken("mallory@example.com")

	tests := []struct {
		name           string
		token          string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Admin email allowed",
			token:          adminToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Regular email forbidden",
			token:          userToken,
			expectedStatus: http.StatusForbidden,
			expectedError:  "Admin access required",
		},
		{
			name:           "Unauthenticated",
			token:          "",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "No authorization header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodGet, "/admin/users", nil, tt.token)
			assert.Equal(t, tt.expectedStatus, status)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	app, srv, fake := setupTestServer(t)
	fake.AddUser("admin@inkwell.dev", "password123")
	alice := fake.AddUser("alice@example.com", "password123")
	token := fake.IssueToken("admin@inkwell.dev")

	// Only alice has a local row; the provider knows both accounts.
	require.NoError(t, srv.db.Create(&models.User{ID: alice.ID, Email: alice.Email}).Error)

	status, body := doJSON(t, app, http.MethodGet, "/admin/users", nil, token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)

	providerUsers, ok := data["supabaseUsers"].([]interface{})
	require.True(t, ok)
	assert.Len(t, providerUsers, 2)
	assert.Equal(t, float64(2), data["totalUsers"])

	localUsers, ok := data["prismaUsers"].([]interface{})
	require.True(t, ok)
	require.Len(t, localUsers, 1)
	assert.Equal(t, alice.Email, localUsers[0].(map[string]interface{})["email"])

	emails, ok := data["userEmails"].([]interface{})
	require.True(t, ok)
	assert.Len(t, emails, 2)
	assert.Contains(t, emails, "alice@example.com")
	assert.Contains(t, emails, "admin@inkwell.dev")
}

func TestGetUserByEmail(t *testing.T) {
	app, srv, fake := setupTestServer(t)
	fake.AddUser("admin@inkwell.dev", "password123")
	alice := fake.AddUser("alice@example.com", "password123")
	token := fake.IssueToken("admin@inkwell.dev")

	require.NoError(t, srv.db.Create(&models.User{ID: alice.ID, Email: alice.Email}).Error)
	post := models.Post{Title: "Post", Content: "Body", AuthorID: alice.ID}
	require.NoError(t, srv.db.Create(&post).Error)
	require.NoError(t, srv.db.Create(&models.Comment{Content: "Self reply", AuthorID: alice.ID, PostID: post.ID}).Error)

	status, body := doJSON(t, app, http.MethodGet, "/admin/user/alice@example.com", nil, token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)

	providerUser, ok := data["supabaseUser"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, alice.ID, providerUser["id"])

	localUser, ok := data["prismaUser"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", localUser["email"])

	activity, ok := data["userActivity"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), activity["totalPosts"])
	assert.Equal(t, float64(1), activity["totalComments"])
}

func TestGetUserByEmailUnknown(t *testing.T) {
	app, _, fake := setupTestServer(t)
	fake.AddUser("admin@inkwell.dev", "password123")
	token := fake.IssueToken("admin@inkwell.dev")

	status, body := doJSON(t, app, http.MethodGet, "/admin/user/ghost@example.com", nil, token)
	assert.Equal(t, http.StatusOK, status)

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Nil(t, data["supabaseUser"])
	assert.Nil(t, data["prismaUser"])
	assert.Nil(t, data["userActivity"])
}
