package crud

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scribble/domain"
	"scribble/errs"
)

// FollowService manages the directed follow edges between users.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Follow runs validations needed for creating new Follow database records.
func (fv *followValidator) Follow(followerID, followedID int) error {
	follow := &domain.Follow{FollowerID: followerID, FollowedID: followedID}
	err := runFollowValFns(follow,
		fv.followedIsNotFollower,
		fv.followedUserExists)
	if err != nil {
		return err
	}
	return fv.followGorm.Follow(followerID, followedID)
}

// Unfollow runs validations needed for deleting Follow database records.
func (fv *followValidator) Unfollow(followerID, followedID int) error {
	follow := &domain.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := runFollowValFns(follow, fv.followedUserExists); err != nil {
		return err
	}
	return fv.followGorm.Unfollow(followerID, followedID)
}

// runFollowValFns runs any number of functions of type followValFn on the passed in Follow object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

// A followValFn is any function that takes in a pointer to a domain.Follow object and returns an error.
type followValFn func(follow *domain.Follow) error

// followedIsNotFollower makes sure that a user is not following themselves.
// The check lives here, not just at the http layer, so that no caller can
// sneak a self-referential edge into the follows table.
func (fv *followValidator) followedIsNotFollower(follow *domain.Follow) error {
	if follow.FollowerID == follow.FollowedID {
		return errs.Errorf(errs.ECONFLICT, "You cannot follow yourself.")
	}
	return nil
}

// followedUserExists makes sure that the user to be followed actually exists.
func (fv *followValidator) followedUserExists(follow *domain.Follow) error {
	err := fv.db.First(&domain.User{}, "id = ?", follow.FollowedID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The user to be followed does not exist.")
		}
		return err
	}
	return nil
}

// Follow stores a new follow edge. Following a user twice is not an error:
// the unique index on (follower_id, followed_id) turns the second insert into
// a no-op, which also serializes two racing follows on the same pair.
func (fg *followGorm) Follow(followerID, followedID int) error {
	follow := &domain.Follow{FollowerID: followerID, FollowedID: followedID}
	return fg.db.Clauses(clause.OnConflict{DoNothing: true}).Create(follow).Error
}

// Unfollow deletes the follow edge if present. Unfollowing a user that is
// not being followed is a no-op.
func (fg *followGorm) Unfollow(followerID, followedID int) error {
	return fg.db.
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&domain.Follow{}).Error
}

// IsFollowing reports whether a follow edge from follower to followed exists.
func (fg *followGorm) IsFollowing(followerID, followedID int) (bool, error) {
	var count int64
	err := fg.db.
		Model(&domain.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowedIDs returns the IDs of all users the given user follows.
func (fg *followGorm) FollowedIDs(followerID int) ([]int, error) {
	var ids []int
	err := fg.db.
		Model(&domain.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
