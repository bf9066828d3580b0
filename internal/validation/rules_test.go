package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateGroupSlug(t *testing.T) {
	valid := []string{"field-notes", "long-reads", "abc", "a1b2c3"}
	for _, slug := range valid {
		assert.NoError(t, ValidateGroupSlug(slug), "slug=%q", slug)
	}

	invalid := []string{
		"",
		"ab",
		"Tech",
		"has space",
		"-leading",
		"trailing-",
		"über",
		"admin",
		"posts",
		"profile",
	}
	for _, slug := range invalid {
		assert.Error(t, ValidateGroupSlug(slug), "slug=%q", slug)
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice"))
	assert.NoError(t, ValidateUsername("alice_b-2"))

	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("_leading"))
	assert.Error(t, ValidateUsername("trailing-"))
	assert.Error(t, ValidateUsername("has space"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("missing@tld"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Sufficient-Pass-1"))

	assert.Error(t, ValidatePassword("Short-1"))
	assert.Error(t, ValidatePassword("nouppercase-123456"))
	assert.Error(t, ValidatePassword("NOLOWERCASE-123456"))
	assert.Error(t, ValidatePassword("No-Digits-Here-At-All"))
}
