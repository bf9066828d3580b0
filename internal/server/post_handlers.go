package server

import (
	"errors"
	"io"

	"quill/internal/forms"
	"quill/internal/models"
	"quill/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// PostDetail handles GET /posts/:id
func (s *Server) PostDetail(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return respondForAppError(c, err)
	}

	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	authorPosts, err := s.postRepo.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"post":               post,
		"comments":           comments,
		"author_posts_count": authorPosts,
	})
}

// CreatePost handles POST /create. On success the client is redirected to
// the author's profile, mirroring the post-then-browse flow.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	username := c.Locals("username").(string)

	var req forms.PostForm
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if fields := forms.Validate(&req); fields != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(fields))
	}

	if req.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *req.GroupID); err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == models.ErrCodeNotFound {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewFieldValidationError(map[string]string{
						"group_id": "Select a valid group.",
					}))
			}
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	imagePath, err := s.saveUploadedImage(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	post := &models.Post{
		Text:     req.Text,
		AuthorID: userID,
		GroupID:  req.GroupID,
		Image:    imagePath,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Redirect("/profile/"+username, fiber.StatusFound)
}

// EditPost handles POST /posts/:id/edit. A non-author gets no error: the
// request is answered with the same redirect a successful edit produces,
// before the submitted form is even looked at, and nothing is written.
func (s *Server) EditPost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	detailURL := "/posts/" + c.Params("id")

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return respondForAppError(c, err)
	}
	if models.AuthorizeEdit(post, userID) != models.EditAuthorized {
		return c.Redirect(detailURL, fiber.StatusFound)
	}

	var req forms.PostForm
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if fields := forms.Validate(&req); fields != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldValidationError(fields))
	}

	if req.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *req.GroupID); err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == models.ErrCodeNotFound {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewFieldValidationError(map[string]string{
						"group_id": "Select a valid group.",
					}))
			}
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	updates := map[string]any{
		"text":     req.Text,
		"group_id": req.GroupID,
	}
	imagePath, imgErr := s.saveUploadedImage(c)
	if imgErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, imgErr)
	}
	if imagePath != "" {
		updates["image"] = imagePath
	}

	// UpdateAuthored re-checks ownership inside its transaction; a concurrent
	// author change between the check above and the write still loses.
	if _, err := s.postRepo.UpdateAuthored(ctx, id, userID, updates); err != nil {
		if errors.Is(err, repository.ErrNotAuthor) {
			return c.Redirect(detailURL, fiber.StatusFound)
		}
		return respondForAppError(c, err)
	}

	// Best-effort cleanup of the replaced file; the new image is already
	// recorded on the post.
	if imagePath != "" && post.Image != "" {
		_ = s.images.Remove(post.Image)
	}

	return c.Redirect(detailURL, fiber.StatusFound)
}

// saveUploadedImage stores the optional multipart image field. An absent
// field is not an error; an invalid file is.
func (s *Server) saveUploadedImage(c *fiber.Ctx) (string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", models.NewValidationError("Could not read uploaded file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", models.NewValidationError("Could not read uploaded file")
	}

	return s.images.Save(fileHeader.Filename, content)
}
