package domain

import "time"

// Group is a category that posts can be filed under. Groups are set up by an
// administrator and are never deleted as part of normal operation. Deleting
// one anyway leaves its posts in place, just without a group.
type Group struct {
	ID          int    `json:"id"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupService is a set of methods to manipulate and work with the Group model.
type GroupService interface {
	BySlug(slug string) (*Group, error)
	All() ([]Group, error)
	Create(group *Group) error
	Delete(id int) error
}
