// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"time"

	"ripple/internal/bootstrap"
	"ripple/internal/config"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/recommend"
	"ripple/internal/repository"
	"ripple/internal/social"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SocialGraph is the follow-graph surface the handlers need. Satisfied by
// *social.Service; mocked in tests.
type SocialGraph interface {
	CreateOrUpdateUser(ctx context.Context, id, displayName string) error
	Follow(ctx context.Context, followerID, followeeID string) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID string) (bool, error)
	FollowersCount(ctx context.Context, id string) (int64, error)
	FollowingCount(ctx context.Context, id string) (int64, error)
	ListFollowers(ctx context.Context, id string, offset, limit int) ([]models.FollowerInfo, error)
	ListFollowing(ctx context.Context, id string, offset, limit int) ([]models.FollowerInfo, error)
	IsFollowing(ctx context.Context, a, b string) (bool, error)
	IsMutualFollow(ctx context.Context, a, b string) (bool, error)
	FriendsOfFriends(ctx context.Context, id string) ([]models.RecommendedCreator, error)
	SocialDistance(ctx context.Context, a, b string) (int, error)
	RecommendedContentCreators(ctx context.Context, userID string, limit int) ([]models.RecommendedCreator, error)
}

// FeedProvider is the recommendation surface the handlers need. Satisfied by
// *recommend.Engine.
type FeedProvider interface {
	GetRecommendedPosts(ctx context.Context, userID string, count int, excludeIDs []string) []models.ScoredPost
	GetTrendingPosts(ctx context.Context, count int) []models.ScoredPost
	Preload(ctx context.Context, userID string)
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	contentRepo repository.ContentRepository
	socialGraph SocialGraph
	feed        FeedProvider
	engine      *recommend.Engine
}

// NewServerWithDeps creates a Server from an initialized runtime. The
// recommendation engine subscribes to the social service's invalidation bus
// here, at composition time.
func NewServerWithDeps(cfg *config.Config, rt *bootstrap.Runtime) *Server {
	contentRepo := repository.NewContentRepository(rt.DB)
	socialService := social.NewService(rt.Graph, middleware.Logger)
	engine := recommend.NewEngine(socialService, contentRepo, socialService.Events(), middleware.Logger)

	return &Server{
		config:         cfg,
		db:             rt.DB,
		redis:          rt.Redis,
		promMiddleware: middleware.InitMetrics("ripple-api"),
		contentRepo:    contentRepo,
		socialGraph:    socialService,
		feed:           engine,
		engine:         engine,
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// OpenTelemetry spans when tracing is enabled
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// User and social graph routes
	users := api.Group("/users")
	users.Put("/:id", s.UpsertUser)
	users.Post("/:id/follow/:targetId", middleware.RateLimit(
		s.redis, 30, time.Minute, "follow"), s.Follow)
	users.Delete("/:id/follow/:targetId", s.Unfollow)
	users.Get("/:id/followers/count", s.GetFollowersCount)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following/count", s.GetFollowingCount)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id/relationship/:targetId", s.GetRelationship)
	users.Get("/:id/mutual/:targetId", s.GetMutualFollow)
	users.Get("/:id/distance/:targetId", s.GetSocialDistance)
	users.Get("/:id/friends-of-friends", s.GetFriendsOfFriends)
	users.Get("/:id/recommended-creators", s.GetRecommendedCreators)

	// Feed routes
	users.Get("/:id/feed", s.GetFeed)
	users.Post("/:id/feed/preload", s.PreloadFeed)
	api.Get("/feed/trending", s.GetTrendingFeed)

	// Content routes
	posts := api.Group("/posts")
	posts.Get("/recent", s.GetRecentPosts)
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Get("/:id", s.GetPost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API keeps serving without Redis; readiness only degrades.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Ripple API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Release the engine's invalidation subscription
	if s.engine != nil {
		s.engine.Close()
	}

	log.Println("Server shutdown complete")
	return nil
}
