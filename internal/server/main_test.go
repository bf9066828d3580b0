package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"quill/internal/config"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakePageCache is an in-memory PageCache for handler tests.
type fakePageCache struct {
	mu    sync.Mutex
	pages map[int][]byte
}

func newFakePageCache() *fakePageCache {
	return &fakePageCache{pages: make(map[int][]byte)}
}

func (f *fakePageCache) Get(_ context.Context, page int) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.pages[page]
	return body, ok
}

func (f *fakePageCache) Set(_ context.Context, page int, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[page] = append([]byte(nil), body...)
}

func (f *fakePageCache) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = make(map[int][]byte)
	return nil
}

// expire drops a single page, standing in for TTL expiry.
func (f *fakePageCache) expire(page int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pages, page)
}

func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	))

	cfg := &config.Config{
		JWTSecret:    strings.Repeat("quill-test-secret-", 2),
		Port:         "0",
		Env:          "test",
		PostsPerPage: 10,
		FeedCacheTTL: 20,
		MediaDir:     t.TempDir(),
	}

	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	s.SetPageCache(newFakePageCache())

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app, db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("Sufficient-Pass-1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		IsAdmin:  admin,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// authedRequest builds a request carrying a valid session cookie for user.
func authedRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req
}

func withSession(t *testing.T, s *Server, req *http.Request, user *models.User) *http.Request {
	t.Helper()
	token, err := s.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	return req
}
