package crud

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"scribble/domain"
	"scribble/errs"
)

// GroupService manages Groups.
// It implements the domain.GroupService interface.
type GroupService struct {
	groupValidator
}

// groupValidator runs validations on incoming Group data.
// On success, it passes the data on to groupGorm.
// Otherwise, it returns the error of the validation that has failed.
type groupValidator struct {
	slugRegex *regexp.Regexp
	groupGorm
}

// groupGorm runs CRUD operations on the database using incoming Group data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type groupGorm struct {
	db *gorm.DB
}

// NewGroupService returns an instance of GroupService.
func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{
		groupValidator{
			slugRegex: regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`),
			groupGorm: groupGorm{
				db: db,
			},
		},
	}
}

// Ensure the GroupService struct properly implements the domain.GroupService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.GroupService = &GroupService{}

// Create runs validations needed for creating new Group database records.
func (gv *groupValidator) Create(group *domain.Group) error {
	err := runGroupValFns(group,
		gv.titleRequired,
		gv.slugFormat,
		gv.slugIsAvail)
	if err != nil {
		return err
	}
	return gv.groupGorm.Create(group)
}

// runGroupValFns runs any number of functions of type groupValFn on the passed in Group object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runGroupValFns(group *domain.Group, fns ...groupValFn) error {
	for _, fn := range fns {
		if err := fn(group); err != nil {
			return err
		}
	}
	return nil
}

// A groupValFn is any function that takes in a pointer to a domain.Group object and returns an error.
type groupValFn func(group *domain.Group) error

// slugFormat makes sure the slug is lowercase, dash-separated and url-safe.
func (gv *groupValidator) slugFormat(group *domain.Group) error {
	if !gv.slugRegex.MatchString(group.Slug) {
		return errs.Errorf(errs.EINVALID, "The group slug is invalid.")
	}
	return nil
}

// slugIsAvail makes sure that a provided slug is not yet taken.
func (gv *groupValidator) slugIsAvail(group *domain.Group) error {
	existing, err := gv.groupGorm.BySlug(group.Slug)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		return nil
	}
	if err != nil {
		return err
	}
	if group.ID != existing.ID {
		return errs.Errorf(errs.EINVALID, "This group slug is already taken.")
	}
	return nil
}

// titleRequired makes sure that the title is not the empty string.
func (gv *groupValidator) titleRequired(group *domain.Group) error {
	if strings.TrimSpace(group.Title) == "" {
		return errs.Errorf(errs.EINVALID, "A group title is required.")
	}
	return nil
}

// BySlug retrieves a single Group by its slug.
func (gg *groupGorm) BySlug(slug string) (*domain.Group, error) {
	var group domain.Group
	err := gg.db.First(&group, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The group does not exist.")
		}
		return nil, err
	}
	return &group, nil
}

// All retrieves all groups, ordered by title. The create-post form uses this
// to populate its group selector.
func (gg *groupGorm) All() ([]domain.Group, error) {
	groups := []domain.Group{}
	if err := gg.db.Order("title ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Create stores the data from the Group object in a new database record.
func (gg *groupGorm) Create(group *domain.Group) error {
	return gg.db.Create(group).Error
}

// Delete removes a Group record. The group's posts survive: their group
// reference is nulled out first, in the same transaction.
func (gg *groupGorm) Delete(id int) error {
	return gg.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Post{}).
			Where("group_id = ?", id).
			Update("group_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&domain.Group{}, "id = ?", id).Error
	})
}
