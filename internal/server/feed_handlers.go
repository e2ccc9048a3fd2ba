package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/users/:id/feed?count=10&exclude=p1,p2
//
// The feed never fails: any upstream trouble degrades to trending content
// or an empty list, so this handler has no error path.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	count := c.QueryInt("count", 10)

	var excludeIDs []string
	if raw := c.Query("exclude"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				excludeIDs = append(excludeIDs, id)
			}
		}
	}

	posts := s.feed.GetRecommendedPosts(c.UserContext(), c.Params("id"), count, excludeIDs)
	return c.JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}

// GetTrendingFeed handles GET /api/feed/trending?count=10
func (s *Server) GetTrendingFeed(c *fiber.Ctx) error {
	count := c.QueryInt("count", 10)

	posts := s.feed.GetTrendingPosts(c.UserContext(), count)
	return c.JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}

// PreloadFeed handles POST /api/users/:id/feed/preload
func (s *Server) PreloadFeed(c *fiber.Ctx) error {
	s.feed.Preload(c.UserContext(), c.Params("id"))
	return c.SendStatus(fiber.StatusAccepted)
}
