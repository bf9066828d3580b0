package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		jwtSecret   string
		dbPassword  string
		expectError bool
	}{
		{"Production with default secret", "production", "your-secret-key-change-in-production", "strong-db-pass", true},
		{"Production with short secret", "production", "short-secret", "strong-db-pass", true},
		{"Production with default DB password", "prod", "secure-secret-at-least-32-chars-long", "password", true},
		{"Production with strong credentials", "production", "secure-secret-at-least-32-chars-long", "strong-db-pass", false},
		{"Development with default secret", "development", "your-secret-key-change-in-production", "password", false},
		{"Test with short secret", "test", "short-secret", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:          tt.env,
				JWTSecret:    tt.jwtSecret,
				DBPassword:   tt.dbPassword,
				Port:         "8470",
				PostsPerPage: 10,
				FeedCacheTTL: 20,
			}

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRequiredFields(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:          "test",
			JWTSecret:    "secure-secret-at-least-32-chars-long",
			Port:         "8470",
			PostsPerPage: 10,
			FeedCacheTTL: 20,
		}
	}

	c := base()
	c.Port = ""
	assert.Error(t, c.Validate())

	c = base()
	c.JWTSecret = ""
	assert.Error(t, c.Validate())

	c = base()
	c.PostsPerPage = 0
	assert.Error(t, c.Validate())

	c = base()
	c.FeedCacheTTL = -1
	assert.Error(t, c.Validate())

	c = base()
	c.FeedCacheTTL = 0
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer viper.Reset()

	os.Setenv("APP_ENV", "test")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, 10, c.PostsPerPage)
	assert.Equal(t, 20, c.FeedCacheTTL)
	assert.Equal(t, "media/posts", c.MediaDir)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("POSTS_PER_PAGE")
	defer os.Unsetenv("FEED_CACHE_TTL_SECONDS")
	defer viper.Reset()

	os.Setenv("APP_ENV", "test")
	os.Setenv("POSTS_PER_PAGE", "25")
	os.Setenv("FEED_CACHE_TTL_SECONDS", "60")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, 25, c.PostsPerPage)
	assert.Equal(t, 60, c.FeedCacheTTL)
}
