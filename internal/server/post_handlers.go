package server

import (
	"strings"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxPostContentLength = 5000

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		AuthorID string `json:"author_id"`
		Content  string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.AuthorID == "" || req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("author_id and content are required"))
	}
	if len(req.Content) > maxPostContentLength {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("content exceeds maximum length"))
	}

	post := &models.Post{
		ID:       uuid.NewString(),
		AuthorID: req.AuthorID,
		Content:  req.Content,
	}
	if err := s.contentRepo.Create(c.UserContext(), post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.contentRepo.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.JSON(post)
}

// GetRecentPosts handles GET /api/posts/recent?limit=20
func (s *Server) GetRecentPosts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	posts, err := s.contentRepo.Recent(c.UserContext(), limit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		AuthorID string  `json:"author_id"`
		Content  string  `json:"content"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.AuthorID == "" || req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("author_id and content are required"))
	}

	comment := &models.Comment{
		ID:       uuid.NewString(),
		PostID:   c.Params("id"),
		AuthorID: req.AuthorID,
		Content:  req.Content,
		ParentID: req.ParentID,
	}
	if err := s.contentRepo.CreateComment(c.UserContext(), comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID, err := likeUserID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	if err := s.contentRepo.Like(c.UserContext(), userID, c.Params("id")); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID, err := likeUserID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	if err := s.contentRepo.Unlike(c.UserContext(), userID, c.Params("id")); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func likeUserID(c *fiber.Ctx) (string, error) {
	var req struct {
		UserID string `json:"user_id"`
	}
	// The acting user may arrive in the body or as a query parameter.
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		req.UserID = c.Query("user_id")
	}
	if req.UserID == "" {
		return "", models.NewValidationError("user_id is required")
	}
	return req.UserID, nil
}
