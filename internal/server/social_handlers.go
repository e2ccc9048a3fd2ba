package server

import (
	"errors"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "VALIDATION_ERROR":
			return fiber.StatusBadRequest
		case "NOT_FOUND":
			return fiber.StatusNotFound
		case "UNAVAILABLE":
			return fiber.StatusServiceUnavailable
		}
	}
	return fiber.StatusInternalServerError
}

// UpsertUser handles PUT /api/users/:id
func (s *Server) UpsertUser(c *fiber.Ctx) error {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := c.Params("id")
	if err := s.socialGraph.CreateOrUpdateUser(c.UserContext(), userID, req.DisplayName); err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":           userID,
		"display_name": req.DisplayName,
	})
}

// Follow handles POST /api/users/:id/follow/:targetId
func (s *Server) Follow(c *fiber.Ctx) error {
	created, err := s.socialGraph.Follow(c.UserContext(), c.Params("id"), c.Params("targetId"))
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"created": created})
}

// Unfollow handles DELETE /api/users/:id/follow/:targetId
func (s *Server) Unfollow(c *fiber.Ctx) error {
	removed, err := s.socialGraph.Unfollow(c.UserContext(), c.Params("id"), c.Params("targetId"))
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"removed": removed})
}

// GetFollowersCount handles GET /api/users/:id/followers/count
func (s *Server) GetFollowersCount(c *fiber.Ctx) error {
	count, err := s.socialGraph.FollowersCount(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// GetFollowingCount handles GET /api/users/:id/following/count
func (s *Server) GetFollowingCount(c *fiber.Ctx) error {
	count, err := s.socialGraph.FollowingCount(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 20)

	followers, err := s.socialGraph.ListFollowers(c.UserContext(), c.Params("id"), offset, limit)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"followers": followers,
		"offset":    offset,
		"limit":     limit,
	})
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 20)

	following, err := s.socialGraph.ListFollowing(c.UserContext(), c.Params("id"), offset, limit)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"following": following,
		"offset":    offset,
		"limit":     limit,
	})
}

// GetRelationship handles GET /api/users/:id/relationship/:targetId
func (s *Server) GetRelationship(c *fiber.Ctx) error {
	ctx := c.UserContext()
	a, b := c.Params("id"), c.Params("targetId")

	following, err := s.socialGraph.IsFollowing(ctx, a, b)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	followedBy, err := s.socialGraph.IsFollowing(ctx, b, a)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"following":   following,
		"followed_by": followedBy,
		"mutual":      following && followedBy,
	})
}

// GetMutualFollow handles GET /api/users/:id/mutual/:targetId
func (s *Server) GetMutualFollow(c *fiber.Ctx) error {
	mutual, err := s.socialGraph.IsMutualFollow(c.UserContext(), c.Params("id"), c.Params("targetId"))
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.JSON(fiber.Map{"mutual": mutual})
}

// GetSocialDistance handles GET /api/users/:id/distance/:targetId
func (s *Server) GetSocialDistance(c *fiber.Ctx) error {
	distance, err := s.socialGraph.SocialDistance(c.UserContext(), c.Params("id"), c.Params("targetId"))
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"distance":  distance,
		"reachable": distance != models.SocialDistanceUnreachable,
	})
}

// GetFriendsOfFriends handles GET /api/users/:id/friends-of-friends
func (s *Server) GetFriendsOfFriends(c *fiber.Ctx) error {
	suggestions, err := s.socialGraph.FriendsOfFriends(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.JSON(fiber.Map{"suggestions": suggestions})
}

// GetRecommendedCreators handles GET /api/users/:id/recommended-creators
func (s *Server) GetRecommendedCreators(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	creators, err := s.socialGraph.RecommendedContentCreators(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.JSON(fiber.Map{"creators": creators})
}
