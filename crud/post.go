package crud

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"scribble/domain"
	"scribble/errs"
)

// DefaultPageSize is the number of posts per feed page unless configured otherwise.
const DefaultPageSize = 10

// PostService manages Posts and composes the four feeds: global, per group,
// per author profile, and the personalized following feed.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations and feed queries on the database.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db       *gorm.DB
	pageSize int
}

// NewPostService returns an instance of PostService with the given feed page
// size. A non-positive pageSize falls back to DefaultPageSize.
func NewPostService(db *gorm.DB, pageSize int) *PostService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PostService{
		postValidator{
			postGorm{
				db:       db,
				pageSize: pageSize,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(post *domain.Post) error {
	err := runPostValFns(post,
		pv.userIDValid,
		pv.textRequired,
		pv.groupExists)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(post)
}

// Update runs validations needed for updating existing Post database records.
// Only text, group and image are updatable; author and creation time are fixed.
func (pv *postValidator) Update(post *domain.Post) error {
	err := runPostValFns(post,
		pv.idValid,
		pv.textRequired,
		pv.groupExists)
	if err != nil {
		return err
	}
	return pv.postGorm.Update(post)
}

// Delete runs validations needed for deleting existing Post database records.
func (pv *postValidator) Delete(post *domain.Post) error {
	if err := runPostValFns(post, pv.idValid); err != nil {
		return err
	}
	return pv.postGorm.Delete(post)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn func(post *domain.Post) error

// idValid makes sure that the passed in ID of a Post is greater than 0.
func (pv *postValidator) idValid(post *domain.Post) error {
	if post.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid post ID.")
	}
	return nil
}

// textRequired makes sure that the Post's text is not empty.
func (pv *postValidator) textRequired(post *domain.Post) error {
	if strings.TrimSpace(post.Text) == "" {
		return errs.Errorf(errs.EINVALID, "Post text must not be empty.")
	}
	return nil
}

// groupExists makes sure that the group a Post is filed under actually exists.
// Posts without a group skip the check.
func (pv *postValidator) groupExists(post *domain.Post) error {
	if post.GroupID == nil {
		return nil
	}
	err := pv.db.First(&domain.Group{}, "id = ?", *post.GroupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The group does not exist.")
		}
		return err
	}
	return nil
}

// userIDValid ensures that the userId is not empty.
func (pv *postValidator) userIDValid(post *domain.Post) error {
	if post.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "A post author is required.")
	}
	return nil
}

// ByID retrieves a single Post by ID, along with its author and group.
func (pg *postGorm) ByID(id int) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.
		Preload("User").
		Preload("Group").
		First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return nil, err
	}
	return &post, nil
}

// GlobalFeed returns the requested page of all posts, newest first.
func (pg *postGorm) GlobalFeed(page int) (*domain.PostPage, error) {
	return pg.paginate(pg.db.Model(&domain.Post{}), page)
}

// GroupFeed returns the group matching the slug and the requested page of
// its posts, newest first.
func (pg *postGorm) GroupFeed(slug string, page int) (*domain.Group, *domain.PostPage, error) {
	var group domain.Group
	err := pg.db.First(&group, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.Errorf(errs.ENOTFOUND, "The group does not exist.")
		}
		return nil, nil, err
	}
	feed, err := pg.paginate(pg.db.Model(&domain.Post{}).Where("group_id = ?", group.ID), page)
	if err != nil {
		return nil, nil, err
	}
	return &group, feed, nil
}

// ProfileFeed returns the author matching the username and the requested
// page of their posts, newest first.
func (pg *postGorm) ProfileFeed(username string, page int) (*domain.User, *domain.PostPage, error) {
	var author domain.User
	err := pg.db.First(&author, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, nil, err
	}
	feed, err := pg.paginate(pg.db.Model(&domain.Post{}).Where("user_id = ?", author.ID), page)
	if err != nil {
		return nil, nil, err
	}
	return &author, feed, nil
}

// FollowingFeed returns the requested page of posts written by authors the
// given user follows, newest first. A user following no one gets an empty
// page, not an error.
func (pg *postGorm) FollowingFeed(userID, page int) (*domain.PostPage, error) {
	query := pg.db.
		Model(&domain.Post{}).
		Joins("JOIN follows ON follows.followed_id = posts.user_id").
		Where("follows.follower_id = ?", userID)
	return pg.paginate(query, page)
}

// paginate runs the given posts query as one fixed-size page. The page number
// is clamped into the valid range, never rejected, matching the paginator
// behavior the frontend relies on. An empty result set still yields a valid
// page 1 of 1.
func (pg *postGorm) paginate(query *gorm.DB, page int) (*domain.PostPage, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pg.pageSize) - 1) / int64(pg.pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	items := []domain.Post{}
	err := query.Session(&gorm.Session{}).
		Preload("User").
		Preload("Group").
		Order("posts.created_at DESC, posts.id DESC").
		Offset((page - 1) * pg.pageSize).
		Limit(pg.pageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &domain.PostPage{
		Items:      items,
		Number:     page,
		TotalPages: totalPages,
		TotalItems: int(total),
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// Create stores the data from the Post object in a new database record and
// reloads it with its author attached.
func (pg *postGorm) Create(post *domain.Post) error {
	if err := pg.db.Create(post).Error; err != nil {
		return err
	}
	return pg.db.Preload("User").Preload("Group").First(post, "id = ?", post.ID).Error
}

// Update writes the updatable columns of an existing Post record. CreatedAt
// and the author never change, even if the passed in object carries values.
func (pg *postGorm) Update(post *domain.Post) error {
	err := pg.db.Model(&domain.Post{ID: post.ID}).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
	if err != nil {
		return err
	}
	return pg.db.Preload("User").Preload("Group").First(post, "id = ?", post.ID).Error
}

// Delete permanently deletes a Post record along with its comments.
func (pg *postGorm) Delete(post *domain.Post) error {
	return pg.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
}
