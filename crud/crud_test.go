package crud

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scribble/domain"
)

// testDB opens a fresh in-memory sqlite database with all migrations applied.
// The connection pool is capped at one so every query sees the same memory DB.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Group{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Follow{},
	)
	require.NoError(t, err)
	return db
}

// createTestUser inserts a user record directly, bypassing the auth
// validations that don't matter here.
func createTestUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
		RememberHash: username + "-remember-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestGroup(t *testing.T, db *gorm.DB, slug string) *domain.Group {
	t.Helper()
	group := &domain.Group{
		Slug:  slug,
		Title: "Group " + slug,
	}
	require.NoError(t, db.Create(group).Error)
	return group
}

// createTestPost inserts a post with an explicit creation time, so tests can
// control feed ordering.
func createTestPost(t *testing.T, db *gorm.DB, author *domain.User, group *domain.Group, text string, createdAt time.Time) *domain.Post {
	t.Helper()
	post := &domain.Post{
		UserID:    author.ID,
		Text:      text,
		CreatedAt: createdAt,
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// createTestPosts inserts n posts one minute apart, oldest first, and returns
// them in insertion order.
func createTestPosts(t *testing.T, db *gorm.DB, author *domain.User, group *domain.Group, n int) []*domain.Post {
	t.Helper()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]*domain.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = createTestPost(t, db, author, group,
			fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}
	return posts
}
