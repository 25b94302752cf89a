// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User is the local projection of an identity-provider account. The ID is
// the provider-issued user id, never generated locally. Rows are created
// lazily on signup, or on signin when the provider knows an account the
// local store does not.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Posts     []Post    `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
	Comments  []Comment `gorm:"foreignKey:AuthorID" json:"comments,omitempty"`
}
