package server

import (
	"github.com/gofiber/fiber/v2"
)

// FollowAuthor handles GET /profile/:username/follow. Following is
// get-or-create: repeating the request leaves a single edge. Following
// yourself is refused without an error.
func (s *Server) FollowAuthor(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	username := c.Params("username")

	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return respondForAppError(c, err)
	}

	if author.ID != userID {
		if err := s.followRepo.Follow(ctx, userID, author.ID); err != nil {
			return respondForAppError(c, err)
		}
	}

	return c.Redirect("/profile/"+username, fiber.StatusFound)
}

// UnfollowAuthor handles GET /profile/:username/unfollow. Removing an
// absent edge is a no-op.
func (s *Server) UnfollowAuthor(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	username := c.Params("username")

	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return respondForAppError(c, err)
	}

	if err := s.followRepo.Unfollow(ctx, userID, author.ID); err != nil {
		return respondForAppError(c, err)
	}

	return c.Redirect("/profile/"+username, fiber.StatusFound)
}
