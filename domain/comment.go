package domain

import "time"

// Comment belongs to exactly one Post and one User. Comments are append-only,
// they are never edited once created.
type Comment struct {
	ID     int    `json:"id"`
	PostID int    `json:"post_id" gorm:"not null;index"`
	UserID int    `json:"user_id" gorm:"not null;index"`
	User   User   `json:"author"`
	Text   string `json:"text" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	Create(comment *Comment) error
	// ByPostID returns a post's comments in arrival order, oldest first.
	ByPostID(postID int) ([]Comment, error)
}
