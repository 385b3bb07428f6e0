// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a unit of user-authored content with zero or more image attachments.
type Post struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	Content  string `gorm:"type:text;not null" json:"content"`
	AuthorID string `gorm:"type:uuid;not null;index" json:"authorId"`
	// Images holds attachment reference paths in upload order, stored as a
	// single JSON text column.
	Images []string `gorm:"serializer:json" json:"images"`
	// TotalLikes is not persisted; computed at query time
	TotalLikes int64 `gorm:"->;-:migration" json:"totalLikes"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->;-:migration" json:"liked"`
	// AuthorName is the resolved author display name; empty when the author
	// no longer exists (computed)
	AuthorName string    `gorm:"->;-:migration" json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BeforeCreate assigns a fresh identifier when none is set.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
