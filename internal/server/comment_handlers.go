package server

import (
	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /comment
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{content=string,postId=string} true "Comment body"
// @Success 200 {object} object{success=bool,comment=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comment [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := c.Locals(middleware.LocalsUserID).(string)

	var req struct {
		Content string `json:"content"`
		PostID  string `json:"postId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Content == "" || req.PostID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content and postId are required"))
	}

	post, err := s.postRepo.GetByID(ctx, req.PostID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post"))
	}

	comment := &models.Comment{
		Content:  req.Content,
		AuthorID: userID,
		PostID:   post.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Reload joined with the author's email and the post's title.
	created, err := s.commentRepo.GetByIDJoined(ctx, comment.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// The cached post read includes comments, so drop the stale entry.
	cache.InvalidatePost(ctx, post.ID)

	return c.JSON(fiber.Map{
		"success": true,
		"comment": created,
	})
}
