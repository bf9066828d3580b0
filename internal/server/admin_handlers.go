package server

import (
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ClearFeedCache handles POST /admin/cache/clear. Cached feed pages
// otherwise only leave by TTL expiry; this drops them all at once.
func (s *Server) ClearFeedCache(c *fiber.Ctx) error {
	if err := s.pageCache.Clear(c.Context()); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"status": "cleared"})
}
