package server

import (
	"quill/internal/forms"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /posts/:id/comment. Whatever the validation
// outcome, the client lands back on the post detail; an empty comment is
// simply not persisted.
func (s *Server) AddComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return respondForAppError(c, err)
	}
	detailURL := "/posts/" + c.Params("id")

	var req forms.CommentForm
	if err := c.BodyParser(&req); err != nil {
		return c.Redirect(detailURL, fiber.StatusFound)
	}
	if fields := forms.Validate(&req); fields != nil {
		return c.Redirect(detailURL, fiber.StatusFound)
	}

	comment := &models.Comment{
		Text:     req.Text,
		PostID:   post.ID,
		AuthorID: userID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Redirect(detailURL, fiber.StatusFound)
}
