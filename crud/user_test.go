package crud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribble/domain"
	"scribble/errs"
)

func TestCreateUser(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "pepper", "hmac-key")

	user := domain.User{
		Username: "  Alice_01 ",
		Email:    " Alice@Example.COM ",
		Password: "password123",
	}
	require.NoError(t, us.Create(&user))

	// Username and email are normalized, the password never hits the database.
	assert.Equal(t, "Alice_01", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "password123", user.PasswordHash)

	// A remember token was generated and only its hash is persisted.
	assert.NotEmpty(t, user.Remember)
	assert.NotEmpty(t, user.RememberHash)
	var stored domain.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Empty(t, stored.Remember)
	assert.Equal(t, user.RememberHash, stored.RememberHash)
}

func TestCreateUserValidation(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "pepper", "hmac-key")

	tests := []struct {
		name string
		user domain.User
	}{
		{"missing username", domain.User{Email: "a@example.com", Password: "password123"}},
		{"username too short", domain.User{Username: "ab", Email: "a@example.com", Password: "password123"}},
		{"username bad chars", domain.User{Username: "not ok!", Email: "a@example.com", Password: "password123"}},
		{"missing password", domain.User{Username: "alice", Email: "a@example.com"}},
		{"password too short", domain.User{Username: "alice", Email: "a@example.com", Password: "short"}},
		{"missing email", domain.User{Username: "alice", Password: "password123"}},
		{"bad email", domain.User{Username: "alice", Email: "not-an-email", Password: "password123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := us.Create(&tt.user)
			require.Error(t, err)
			assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
		})
	}
}

func TestCreateUserTakenUsername(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "pepper", "hmac-key")

	require.NoError(t, us.Create(&domain.User{
		Username: "alice", Email: "alice@example.com", Password: "password123",
	}))

	err := us.Create(&domain.User{
		Username: "alice", Email: "other@example.com", Password: "password123",
	})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	err = us.Create(&domain.User{
		Username: "alice2", Email: "alice@example.com", Password: "password123",
	})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestAuthenticate(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "pepper", "hmac-key")
	require.NoError(t, us.Create(&domain.User{
		Username: "alice", Email: "alice@example.com", Password: "password123",
	}))

	user, err := us.Authenticate("alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = us.Authenticate("alice", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	_, err = us.Authenticate("nobody", "password123")
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestByRemember(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "pepper", "hmac-key")
	user := domain.User{
		Username: "alice", Email: "alice@example.com", Password: "password123",
	}
	require.NoError(t, us.Create(&user))

	found, err := us.ByRemember(user.Remember)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = us.ByRemember("bogus-token")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestDeleteUserCascades(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "pepper", "hmac-key")
	fs := NewFollowService(db)
	cs := NewCommentService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	alicePost := createTestPost(t, db, alice, nil, "by alice", time.Now())
	bobPost := createTestPost(t, db, bob, nil, "by bob", time.Now())

	// Comments in both directions, follows in both directions.
	require.NoError(t, cs.Create(&domain.Comment{PostID: alicePost.ID, UserID: bob.ID, Text: "bob on alice"}))
	require.NoError(t, cs.Create(&domain.Comment{PostID: bobPost.ID, UserID: alice.ID, Text: "alice on bob"}))
	require.NoError(t, fs.Follow(alice.ID, bob.ID))
	require.NoError(t, fs.Follow(bob.ID, alice.ID))

	require.NoError(t, us.Delete(alice.ID))

	var users, posts, comments, follows int64
	require.NoError(t, db.Model(&domain.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&domain.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&domain.Comment{}).Count(&comments).Error)
	require.NoError(t, db.Model(&domain.Follow{}).Count(&follows).Error)

	// Bob and his post survive, everything touching alice is gone.
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), posts)
	assert.Zero(t, comments)
	assert.Zero(t, follows)
}
