// Package seed populates the database with development fixtures.
package seed

import (
	"fmt"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options controls how much data Run creates.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
}

// DefaultOptions returns a small but representative data set.
func DefaultOptions() Options {
	return Options{Users: 5, PostsPerUser: 3, CommentsPerPost: 2}
}

// Run inserts fake users, posts and comments. The user ids are made-up
// provider-style UUIDs, so seeded users exist only locally and cannot sign
// in; this is for exercising the read paths during development.
func Run(db *gorm.DB, opts Options) error {
	users := make([]models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user := models.User{
			ID:    uuid.NewString(),
			Email: fmt.Sprintf("%d.%s", i, gofakeit.Email()),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			post := models.Post{
				Title:    gofakeit.Sentence(6),
				Content:  gofakeit.Paragraph(2, 4, 12, " "),
				AuthorID: user.ID,
			}
			if err := db.Create(&post).Error; err != nil {
				return fmt.Errorf("seed post: %w", err)
			}

			for j := 0; j < opts.CommentsPerPost; j++ {
				commenter := users[gofakeit.Number(0, len(users)-1)]
				comment := models.Comment{
					Content:  gofakeit.Sentence(10),
					AuthorID: commenter.ID,
					PostID:   post.ID,
				}
				if err := db.Create(&comment).Error; err != nil {
					return fmt.Errorf("seed comment: %w", err)
				}
			}
		}
	}

	return nil
}
