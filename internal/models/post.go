package models

import (
	"time"
)

// Post is a blog entry. AuthorID is fixed at creation and never reassigned;
// only the author may mutate the post. Posts are never deleted.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Summary string `json:"summary"`
	Content string `gorm:"not null" json:"content"`
	// Cover holds only the stored filename under the upload directory.
	Cover     string    `json:"cover,omitempty"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
