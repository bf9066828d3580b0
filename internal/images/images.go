// Package images validates and stores post image uploads.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	_ "golang.org/x/image/webp" // Register WebP decoder

	"quill/internal/models"
)

const (
	DefaultMaxUploadSizeMB = 10
	MaxDimension           = 8192
)

// Store writes validated uploads under a media directory and returns
// the relative path recorded on the post.
type Store struct {
	mediaDir           string
	maxUploadSizeBytes int64
}

func NewStore(mediaDir string) *Store {
	return &Store{
		mediaDir:           mediaDir,
		maxUploadSizeBytes: int64(DefaultMaxUploadSizeMB) * 1024 * 1024,
	}
}

// Save validates content sniffed from the bytes themselves, decodes the
// header to confirm it is a real image, and writes it to disk under a
// generated name. Returns the path relative to the media directory.
func (s *Store) Save(filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedImageMIME(detectedType) {
		return "", models.NewValidationError("Invalid image type")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	if !isSupportedFormat(format) {
		return "", models.NewValidationError("Unsupported image format")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return "", models.NewValidationError("Image dimensions out of range")
	}

	name := uuid.NewString() + extensionFor(format, filename)
	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(filepath.Join(s.mediaDir, name), content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}
	return name, nil
}

// Remove deletes a previously saved image. Missing files are not an
// error; callers conflate "already gone" with success.
func (s *Store) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	clean := filepath.Base(relPath)
	err := os.Remove(filepath.Join(s.mediaDir, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch format {
	case "jpeg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func extensionFor(format, filename string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "png", "gif", "webp":
		return "." + format
	}
	if ext := filepath.Ext(filename); ext != "" {
		return strings.ToLower(ext)
	}
	return ".bin"
}
