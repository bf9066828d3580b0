package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func followCount(t *testing.T, s *Server, userID, authorID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, s.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error)
	return count
}

func TestFollowAuthor(t *testing.T) {
	s, app, db := newTestServer(t)
	reader := createTestUser(t, db, "reader", false)
	author := createTestUser(t, db, "author", false)

	req := withSession(t, s, httptest.NewRequest(http.MethodGet, "/profile/author/follow", nil), reader)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/author", resp.Header.Get("Location"))
	assert.Equal(t, int64(1), followCount(t, s, reader.ID, author.ID))

	// Following again changes nothing.
	req = withSession(t, s, httptest.NewRequest(http.MethodGet, "/profile/author/follow", nil), reader)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, int64(1), followCount(t, s, reader.ID, author.ID))
}

func TestFollowSelfIsRefused(t *testing.T) {
	s, app, db := newTestServer(t)
	user := createTestUser(t, db, "narcissist", false)

	req := withSession(t, s, httptest.NewRequest(http.MethodGet, "/profile/narcissist/follow", nil), user)
	resp, err := app.Test(req)
	require.NoError(t, err)

	// Still the profile redirect, but no edge appears.
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/narcissist", resp.Header.Get("Location"))
	assert.Zero(t, followCount(t, s, user.ID, user.ID))
}

func TestUnfollowAuthor(t *testing.T) {
	s, app, db := newTestServer(t)
	reader := createTestUser(t, db, "reader", false)
	author := createTestUser(t, db, "author", false)
	require.NoError(t, db.Exec(
		"INSERT INTO follows (user_id, author_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		reader.ID, author.ID,
	).Error)

	req := withSession(t, s, httptest.NewRequest(http.MethodGet, "/profile/author/unfollow", nil), reader)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/author", resp.Header.Get("Location"))
	assert.Zero(t, followCount(t, s, reader.ID, author.ID))

	// Unfollowing when not following is a quiet no-op.
	req = withSession(t, s, httptest.NewRequest(http.MethodGet, "/profile/author/unfollow", nil), reader)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestFollowUnknownAuthorIs404(t *testing.T) {
	s, app, db := newTestServer(t)
	reader := createTestUser(t, db, "reader", false)

	req := withSession(t, s, httptest.NewRequest(http.MethodGet, "/profile/nobody/follow", nil), reader)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
