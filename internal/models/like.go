package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like represents a user's like on a post.
// The combination of PostID and UserID must be unique; the database index is
// what keeps concurrent toggles from double-counting.
type Like struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_user" json:"postId"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_post_user" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns a fresh identifier when none is set.
func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
