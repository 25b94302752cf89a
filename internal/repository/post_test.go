package repository

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupSQLiteDB opens an in-memory database with the full schema. Preload
// behavior is exercised against real queries rather than mocks.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id, email string) *models.User {
	t.Helper()
	user := &models.User{ID: id, Email: email}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestPostRepository_Create(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	seedUser(t, db, "author-1", "alice@example.com")

	post := &models.Post{Title: "Hello", Content: "World", AuthorID: "author-1"}
	require.NoError(t, repo.Create(ctx, post))
	assert.NotEmpty(t, post.ID, "id is generated on create")
	assert.False(t, post.CreatedAt.IsZero())
}

func TestPostRepository_GetByID(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	seedUser(t, db, "author-1", "alice@example.com")
	post := &models.Post{Title: "Hello", Content: "World", AuthorID: "author-1"}
	require.NoError(t, db.Create(post).Error)

	t.Run("Success", func(t *testing.T) {
		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Hello", got.Title)
	})

	t.Run("Not Found", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestPostRepository_GetByIDWithAssociations(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	seedUser(t, db, "author-1", "alice@example.com")
	seedUser(t, db, "author-2", "bob@example.com")

	post := &models.Post{Title: "Hello", Content: "World", AuthorID: "author-1"}
	require.NoError(t, db.Create(post).Error)

	base := time.Now().Add(-time.Hour)
	newer := &models.Comment{Content: "second", AuthorID: "author-1", PostID: post.ID, CreatedAt: base.Add(time.Minute)}
	older := &models.Comment{Content: "first", AuthorID: "author-2", PostID: post.ID, CreatedAt: base}
	require.NoError(t, db.Create(newer).Error)
	require.NoError(t, db.Create(older).Error)

	got, err := repo.GetByIDWithAssociations(ctx, post.ID)
	require.NoError(t, err)

	require.NotNil(t, got.Author)
	assert.Equal(t, "alice@example.com", got.Author.Email)

	require.Len(t, got.Comments, 2)
	assert.Equal(t, "first", got.Comments[0].Content, "comments ordered oldest first")
	assert.Equal(t, "second", got.Comments[1].Content)
	require.NotNil(t, got.Comments[0].Author)
	assert.Equal(t, "bob@example.com", got.Comments[0].Author.Email)
}

func TestPostRepository_GetByIDWithAssociationsNotFound(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)

	got, err := repo.GetByIDWithAssociations(context.Background(), "missing")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestUserRepository_GetByEmailWithActivity(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "author-1", "alice@example.com")
	post := &models.Post{Title: "Hello", Content: "World", AuthorID: "author-1"}
	require.NoError(t, db.Create(post).Error)
	require.NoError(t, db.Create(&models.Comment{Content: "self reply", AuthorID: "author-1", PostID: post.ID}).Error)

	t.Run("Success", func(t *testing.T) {
		user, err := repo.GetByEmailWithActivity(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Len(t, user.Posts, 1)
		assert.Len(t, user.Comments, 1)
	})

	t.Run("Not Found", func(t *testing.T) {
		user, err := repo.GetByEmailWithActivity(ctx, "ghost@example.com")
		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}
