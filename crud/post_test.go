package crud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribble/domain"
	"scribble/errs"
)

func TestGlobalFeedPagination(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)
	author := createTestUser(t, db, "alice")
	group := createTestGroup(t, db, "cats")
	createTestPosts(t, db, author, group, 20)

	first, err := ps.GlobalFeed(1)
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, 20, first.TotalItems)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)

	second, err := ps.GlobalFeed(2)
	require.NoError(t, err)
	assert.Len(t, second.Items, 10)
	assert.Equal(t, 2, second.Number)
	assert.False(t, second.HasNext)
	assert.True(t, second.HasPrev)

	// The two pages cover all posts exactly once.
	seen := map[int]bool{}
	for _, p := range append(first.Items, second.Items...) {
		seen[p.ID] = true
	}
	assert.Len(t, seen, 20)
}

func TestGlobalFeedOrdering(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)
	author := createTestUser(t, db, "alice")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	oldest := createTestPost(t, db, author, nil, "oldest", base)
	middle := createTestPost(t, db, author, nil, "middle", base.Add(time.Hour))
	newest := createTestPost(t, db, author, nil, "newest", base.Add(2*time.Hour))

	feed, err := ps.GlobalFeed(1)
	require.NoError(t, err)
	require.Len(t, feed.Items, 3)
	assert.Equal(t, newest.ID, feed.Items[0].ID)
	assert.Equal(t, middle.ID, feed.Items[1].ID)
	assert.Equal(t, oldest.ID, feed.Items[2].ID)
}

func TestGlobalFeedOrderingTieBreak(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)
	author := createTestUser(t, db, "alice")
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first := createTestPost(t, db, author, nil, "first", ts)
	second := createTestPost(t, db, author, nil, "second", ts)

	// Same timestamp: the later insertion wins.
	feed, err := ps.GlobalFeed(1)
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, second.ID, feed.Items[0].ID)
	assert.Equal(t, first.ID, feed.Items[1].ID)
}

func TestGlobalFeedClampsPageNumber(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)
	author := createTestUser(t, db, "alice")
	createTestPosts(t, db, author, nil, 15)

	// Beyond the last page clamps to the last page.
	feed, err := ps.GlobalFeed(99)
	require.NoError(t, err)
	assert.Equal(t, 2, feed.Number)
	assert.Len(t, feed.Items, 5)

	// Below the first page clamps to the first page.
	feed, err = ps.GlobalFeed(-3)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Number)
	assert.Len(t, feed.Items, 10)
}

func TestGlobalFeedEmpty(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)

	feed, err := ps.GlobalFeed(1)
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
	assert.Equal(t, 1, feed.Number)
	assert.Equal(t, 1, feed.TotalPages)
	assert.False(t, feed.HasNext)
	assert.False(t, feed.HasPrev)
}

func TestGroupFeed(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)
	author := createTestUser(t, db, "alice")
	cats := createTestGroup(t, db, "cats")
	dogs := createTestGroup(t, db, "dogs")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	inGroup := createTestPost(t, db, author, cats, "a cat post", base)
	createTestPost(t, db, author, dogs, "a dog post", base.Add(time.Minute))
	createTestPost(t, db, author, nil, "a groupless post", base.Add(2*time.Minute))

	group, feed, err := ps.GroupFeed("cats", 1)
	require.NoError(t, err)
	assert.Equal(t, cats.ID, group.ID)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, inGroup.ID, feed.Items[0].ID)
}

func TestGroupFeedUnknownSlug(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)

	_, _, err := ps.GroupFeed("unknown-slug", 1)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestProfileFeed(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	hers := createTestPost(t, db, alice, nil, "by alice", base)
	createTestPost(t, db, bob, nil, "by bob", base.Add(time.Minute))

	author, feed, err := ps.ProfileFeed("alice", 1)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, author.ID)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, hers.ID, feed.Items[0].ID)
}

func TestProfileFeedUnknownUsername(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)

	_, _, err := ps.ProfileFeed("nobody", 1)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestFollowingFeed(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)
	fs := NewFollowService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	older := createTestPost(t, db, bob, nil, "older by bob", base)
	newer := createTestPost(t, db, bob, nil, "newer by bob", base.Add(time.Hour))
	createTestPost(t, db, carol, nil, "by carol", base.Add(2*time.Hour))

	// Before following anyone the feed is empty, not an error.
	feed, err := ps.FollowingFeed(alice.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, feed.Items)

	require.NoError(t, fs.Follow(alice.ID, bob.ID))

	// Exactly the followed author's posts, newest first.
	feed, err = ps.FollowingFeed(alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, newer.ID, feed.Items[0].ID)
	assert.Equal(t, older.ID, feed.Items[1].ID)
}

func TestCreatePostValidation(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)
	alice := createTestUser(t, db, "alice")

	err := ps.Create(&domain.Post{UserID: alice.ID, Text: "   "})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	unknownGroup := 999
	err = ps.Create(&domain.Post{UserID: alice.ID, Text: "hello", GroupID: &unknownGroup})
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	err = ps.Create(&domain.Post{Text: "hello"})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestUpdatePost(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)
	alice := createTestUser(t, db, "alice")
	cats := createTestGroup(t, db, "cats")
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	post := createTestPost(t, db, alice, cats, "original", createdAt)

	post.Text = "edited"
	post.GroupID = nil
	require.NoError(t, ps.Update(post))

	reloaded, err := ps.ByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", reloaded.Text)
	assert.Nil(t, reloaded.GroupID)
	// Edits never move a post in the feed.
	assert.True(t, reloaded.CreatedAt.Equal(createdAt))
}

func TestUpdatePostRequiresText(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice, nil, "original", time.Now())

	post.Text = ""
	err := ps.Update(post)
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	reloaded, err := ps.ByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", reloaded.Text)
}

func TestDeletePostRemovesComments(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)
	cs := NewCommentService(db)
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice, nil, "doomed", time.Now())

	require.NoError(t, cs.Create(&domain.Comment{PostID: post.ID, UserID: alice.ID, Text: "so long"}))
	require.NoError(t, ps.Delete(post))

	_, err := ps.ByID(post.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	var count int64
	require.NoError(t, db.Model(&domain.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPostByIDUnknown(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db, 10)

	_, err := ps.ByID(12345)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}
