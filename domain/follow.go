package domain

import "time"

// Follow represents a self-referential many-to-many relationship between two
// users. A Follow is created when one user decides to follow another user.
// The FollowerID is the ID of the user that follows, the FollowedID is the ID
// of the user being followed. The composite unique index keeps the pair from
// ever existing twice.
type Follow struct {
	ID         int       `json:"id"`
	FollowerID int       `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follow_pair"`
	FollowedID int       `json:"followed_id" gorm:"not null;uniqueIndex:idx_follow_pair"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FollowService manages the directed follow edges between users.
// Follow and Unfollow are idempotent.
type FollowService interface {
	Follow(followerID, followedID int) error
	Unfollow(followerID, followedID int) error
	IsFollowing(followerID, followedID int) (bool, error)
	FollowedIDs(followerID int) ([]int, error)
}
