package server

import (
	"net/http"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	app, _, fake := setupTestServer(t)
	account := fake.AddUser("alice@example.com", "password123")
	token := fake.IssueToken("alice@example.com")

	tests := []struct {
		name           string
		requestBody    map[string]string
		token          string
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Valid post",
			requestBody: map[string]string{
				"title":   "First post",
				"content": "Hello from the other side.",
			},
			token:          token,
			expectedStatus: http.StatusOK,
		},
		{
			name: "Missing title",
			requestBody: map[string]string{
				"content": "No title here.",
			},
			token:          token,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Title and content are required",
		},
		{
			name: "Missing content",
			requestBody: map[string]string{
				"title": "No content here",
			},
			token:          token,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Title and content are required",
		},
		{
			name: "No token",
			requestBody: map[string]string{
				"title":   "Sneaky post",
				"content": "Should never land.",
			},
			token:          "",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodPost, "/post", tt.requestBody, tt.token)
			assert.Equal(t, tt.expectedStatus, status)

			if tt.expectedStatus != http.StatusOK {
				if tt.expectedError != "" {
					assert.Equal(t, tt.expectedError, body["error"])
				}
				return
			}

			assert.Equal(t, true, body["success"])
			post, ok := body["post"].(map[string]interface{})
			require.True(t, ok)
			assert.NotEmpty(t, post["id"])
			assert.Equal(t, "First post", post["title"])
			// The author is the authenticated caller, never client-supplied.
			assert.Equal(t, account.ID, post["authorId"])
		})
	}
}

func TestCreatePostUnauthenticatedWritesNothing(t *testing.T) {
	app, srv, _ := setupTestServer(t)

	status, _ := doJSON(t, app, http.MethodPost, "/post", map[string]string{
		"title":   "Sneaky post",
		"content": "Should never land.",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	var count int64
	require.NoError(t, srv.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetPost(t *testing.T) {
	app, srv, fake := setupTestServer(t)
	author := fake.AddUser("alice@example.com", "password123")
	commenter := fake.AddUser("bob@example.com", "password123")

	require.NoError(t, srv.db.Create(&models.User{ID: author.ID, Email: author.Email}).Error)
	require.NoError(t, srv.db.Create(&models.User{ID: commenter.ID, Email: commenter.Email}).Error)

	post := models.Post{Title: "Read me", Content: "Full text.", AuthorID: author.ID}
	require.NoError(t, srv.db.Create(&post).Error)

	base := time.Now().Add(-time.Hour)
	first := models.Comment{Content: "First!", AuthorID: commenter.ID, PostID: post.ID, CreatedAt: base}
	second := models.Comment{Content: "Second.", AuthorID: author.ID, PostID: post.ID, CreatedAt: base.Add(time.Minute)}
	require.NoError(t, srv.db.Create(&first).Error)
	require.NoError(t, srv.db.Create(&second).Error)

	status, body := doJSON(t, app, http.MethodGet, "/post/"+post.ID, nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	got, ok := body["post"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, post.ID, got["id"])
	assert.Equal(t, "Read me", got["title"])

	authorBody, ok := got["author"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", authorBody["email"])

	comments, ok := got["comments"].([]interface{})
	require.True(t, ok)
	require.Len(t, comments, 2)

	// Oldest first.
	firstBody := comments[0].(map[string]interface{})
	assert.Equal(t, "First!", firstBody["content"])
	firstAuthor, ok := firstBody["author"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "bob@example.com", firstAuthor["email"])
}

func TestGetPostNotFound(t *testing.T) {
	app, _, _ := setupTestServer(t)

	status, body := doJSON(t, app, http.MethodGet, "/post/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Post not found", body["error"])
	assert.Equal(t, "NOT_FOUND", body["code"])
}
