package domain

import "time"

// Post is a text entry written by a user, optionally filed under a group and
// optionally carrying one image. CreatedAt is set once on creation and stays
// fixed across edits; feeds sort on it.
type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id" gorm:"not null;index"`
	User   User   `json:"author"`
	Text   string `json:"text" gorm:"not null"`

	// GroupID is a pointer so that posts without a group store NULL,
	// and so that deleting a group can null it out without touching
	// the post itself.
	GroupID *int   `json:"group_id,omitempty" gorm:"index"`
	Group   *Group `json:"group,omitempty"`

	Image string `json:"image,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostService composes feeds and manages the Post lifecycle. All feed methods
// return pages ordered newest-first, ties broken by descending ID.
type PostService interface {
	ByID(id int) (*Post, error)
	GlobalFeed(page int) (*PostPage, error)
	GroupFeed(slug string, page int) (*Group, *PostPage, error)
	ProfileFeed(username string, page int) (*User, *PostPage, error)
	FollowingFeed(userID, page int) (*PostPage, error)
	Create(post *Post) error
	Update(post *Post) error
	Delete(post *Post) error
}
