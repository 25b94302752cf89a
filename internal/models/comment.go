package models

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

// Comment is a comment on a post. AuthorID is always the authenticated
// caller; PostID must reference an existing post.
type Comment struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  string    `gorm:"not null;index" json:"authorId"`
	PostID    string    `gorm:"not null;index" json:"postId"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Post      *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a generated id when one is not already set.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID != "" {
		return nil
	}
	id, err := gonanoid.New()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}
