package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"quill/internal/models"
	"quill/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupFeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	))
	return db
}

func newTestBuilder(t *testing.T, db *gorm.DB, pageSize int) *Builder {
	t.Helper()
	return NewBuilder(
		repository.NewPostRepository(db),
		repository.NewGroupRepository(db),
		repository.NewUserRepository(db),
		pageSize,
	)
}

func createFeedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "pw"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestGlobalFeedOrdering(t *testing.T) {
	db := setupFeedTestDB(t)
	author := createFeedUser(t, db, "writer")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Two posts share a timestamp so the id tiebreak is observable.
	for i, ts := range []time.Time{
		base.Add(1 * time.Hour),
		base.Add(2 * time.Hour),
		base.Add(2 * time.Hour),
		base.Add(3 * time.Hour),
	} {
		post := &models.Post{Text: fmt.Sprintf("post %d", i+1), AuthorID: author.ID, CreatedAt: ts}
		require.NoError(t, db.Create(post).Error)
	}

	builder := newTestBuilder(t, db, 10)
	page, err := builder.Global(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 4)

	// Newest first; within the shared timestamp the lower id wins.
	assert.Equal(t, "post 4", page.Items[0].Text)
	assert.Equal(t, "post 2", page.Items[1].Text)
	assert.Equal(t, "post 3", page.Items[2].Text)
	assert.Equal(t, "post 1", page.Items[3].Text)
}

func TestGlobalFeedPagination(t *testing.T) {
	db := setupFeedTestDB(t)
	author := createFeedUser(t, db, "prolific")

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		post := &models.Post{
			Text:      fmt.Sprintf("post %d", i+1),
			AuthorID:  author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.Create(post).Error)
	}

	builder := newTestBuilder(t, db, 3)
	ctx := context.Background()

	first, err := builder.Global(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, first.Items, 3)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, int64(7), first.TotalItems)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)

	last, err := builder.Global(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)

	// A page number past the end clamps to the last page.
	clamped, err := builder.Global(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, 3, clamped.Number)
	assert.Equal(t, last.Items[0].ID, clamped.Items[0].ID)

	// Below 1 clamps to the first page.
	under, err := builder.Global(ctx, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, under.Number)
}

func TestGlobalFeedEmpty(t *testing.T) {
	db := setupFeedTestDB(t)
	builder := newTestBuilder(t, db, 10)

	page, err := builder.Global(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestByGroupFiltersAndFails(t *testing.T) {
	db := setupFeedTestDB(t)
	author := createFeedUser(t, db, "writer")

	group := &models.Group{Title: "Field Notes", Slug: "field-notes"}
	require.NoError(t, db.Create(group).Error)

	inGroup := &models.Post{Text: "grouped", AuthorID: author.ID, GroupID: &group.ID}
	loose := &models.Post{Text: "ungrouped", AuthorID: author.ID}
	require.NoError(t, db.Create(inGroup).Error)
	require.NoError(t, db.Create(loose).Error)

	builder := newTestBuilder(t, db, 10)
	ctx := context.Background()

	got, page, err := builder.ByGroup(ctx, "field-notes", 1)
	require.NoError(t, err)
	assert.Equal(t, group.ID, got.ID)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "grouped", page.Items[0].Text)

	_, _, err = builder.ByGroup(ctx, "no-such-group", 1)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrCodeNotFound, appErr.Code)
}

func TestByAuthorFiltersAndFails(t *testing.T) {
	db := setupFeedTestDB(t)
	alice := createFeedUser(t, db, "alice")
	bob := createFeedUser(t, db, "bob")

	require.NoError(t, db.Create(&models.Post{Text: "by alice", AuthorID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Post{Text: "by bob", AuthorID: bob.ID}).Error)

	builder := newTestBuilder(t, db, 10)
	ctx := context.Background()

	author, page, err := builder.ByAuthor(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, author.ID)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "by alice", page.Items[0].Text)

	_, _, err = builder.ByAuthor(ctx, "nobody", 1)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrCodeNotFound, appErr.Code)
}

func TestBySubscriptions(t *testing.T) {
	db := setupFeedTestDB(t)
	reader := createFeedUser(t, db, "reader")
	followed := createFeedUser(t, db, "followed")
	ignored := createFeedUser(t, db, "ignored")

	require.NoError(t, db.Create(&models.Post{Text: "wanted", AuthorID: followed.ID}).Error)
	require.NoError(t, db.Create(&models.Post{Text: "unwanted", AuthorID: ignored.ID}).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO follows (user_id, author_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		reader.ID, followed.ID,
	).Error)

	builder := newTestBuilder(t, db, 10)
	ctx := context.Background()

	page, err := builder.BySubscriptions(ctx, reader.ID, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "wanted", page.Items[0].Text)

	// Following nobody is an empty page, not an error.
	empty, err := builder.BySubscriptions(ctx, ignored.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestBySubscriptionsAnonymousViewer(t *testing.T) {
	db := setupFeedTestDB(t)
	builder := newTestBuilder(t, db, 10)

	page, err := builder.BySubscriptions(context.Background(), 0, 1)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, ErrNoViewer)
}
