package server

import (
	"encoding/json"
	"errors"

	"quill/internal/feed"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /, the global feed. The rendered page body is cached in
// Redis keyed by page number; within the TTL the stored bytes are served
// as-is, so fresh posts only appear once the entry expires.
func (s *Server) Index(c *fiber.Ctx) error {
	ctx := c.Context()
	pageNum := feed.ParsePageParam(c.Query("page"))

	if body, ok := s.pageCache.Get(ctx, pageNum); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.Send(body)
	}

	page, err := s.feed.Global(ctx, pageNum)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	body, err := json.Marshal(fiber.Map{"page": page})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.pageCache.Set(ctx, pageNum, body)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}

// GroupFeed handles GET /group/:slug
func (s *Server) GroupFeed(c *fiber.Ctx) error {
	ctx := c.Context()
	slug := c.Params("slug")
	pageNum := feed.ParsePageParam(c.Query("page"))

	group, page, err := s.feed.ByGroup(ctx, slug, pageNum)
	if err != nil {
		return respondForAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"group": group,
		"page":  page,
	})
}

// Profile handles GET /profile/:username. When the viewer is authenticated
// the response carries whether they follow this author.
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.Context()
	username := c.Params("username")
	pageNum := feed.ParsePageParam(c.Query("page"))

	author, page, err := s.feed.ByAuthor(ctx, username, pageNum)
	if err != nil {
		return respondForAppError(c, err)
	}

	following := false
	if viewerID, ok := s.optionalUserID(c); ok && viewerID != author.ID {
		following, err = s.followRepo.IsFollowing(ctx, viewerID, author.ID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	return c.JSON(fiber.Map{
		"author":    author,
		"page":      page,
		"following": following,
	})
}

// SubscriptionFeed handles GET /follow, the feed of posts by authors the
// authenticated user follows.
func (s *Server) SubscriptionFeed(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	pageNum := feed.ParsePageParam(c.Query("page"))

	page, err := s.feed.BySubscriptions(ctx, userID, pageNum)
	if err != nil {
		if errors.Is(err, feed.ErrNoViewer) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{"page": page})
}
