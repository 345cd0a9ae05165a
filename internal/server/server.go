// Package server contains the HTTP handlers for the application's API.
package server

import (
	"context"
	"fmt"
	"time"

	"wayfare/internal/ai"
	"wayfare/internal/cache"
	"wayfare/internal/config"
	"wayfare/internal/database"
	"wayfare/internal/middleware"
	"wayfare/internal/notifications"
	"wayfare/internal/repository"
	"wayfare/internal/service"

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

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	connRepo    repository.ConnectionRepository
	groupRepo   repository.GroupRepository
	tripRepo    repository.TripRepository

	notifier *notifications.Notifier

	profileService        *service.ProfileService
	postService           *service.PostService
	trendingService       *service.TrendingService
	recommendationService *service.RecommendationService
	tripService           *service.TripService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("wayfare-api"),
		userRepo:       repository.NewUserRepository(db),
		profileRepo:    repository.NewProfileRepository(db),
		postRepo:       repository.NewPostRepository(db),
		connRepo:       repository.NewConnectionRepository(db),
		groupRepo:      repository.NewGroupRepository(db),
		tripRepo:       repository.NewTripRepository(db),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	aiClient := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AITimeout)
	scorer := service.NewCompatibilityScorer()

	server.profileService = service.NewProfileService(
		server.profileRepo, server.postRepo, server.connRepo, server.notifier)
	server.postService = service.NewPostService(
		server.postRepo, server.profileService, aiClient, cfg.AITimeout)
	server.trendingService = service.NewTrendingService(
		server.postRepo, cache.NewTTLStore(cfg.TrendingTTL))
	server.recommendationService = service.NewRecommendationService(
		server.profileRepo, server.postRepo, server.groupRepo,
		server.profileService, scorer, server.trendingService,
		cache.NewTTLStore(cfg.RecommendationTTL))
	server.tripService = service.NewTripService(
		server.tripRepo, server.profileService, aiClient, aiClient,
		server.notifier, cfg.AITimeout)

	middleware.InitMiddleware(cfg)

	return server, nil
}

// Shutdown releases server-held resources.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
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

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public browse routes
	api.Get("/trending/destinations", s.GetTrendingDestinations)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// Profile routes
	profiles := protected.Group("/profiles")
	profiles.Get("/me", s.GetMyProfile)
	profiles.Put("/me", s.UpdateMyProfile)
	profiles.Get("/by-handle/:handle", s.GetProfileByHandle)
	profiles.Post("/:id/follow", s.FollowUser)
	profiles.Delete("/:id/follow", s.UnfollowUser)
	profiles.Post("/:id/block", s.BlockUser)
	profiles.Get("/:id", s.GetUserProfile)

	// Post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Get("/", s.ListPosts)
	posts.Get("/me", s.GetMyPosts)
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/bookmark", s.ToggleBookmark)
	posts.Post("/:id/archive", s.ArchivePost)

	// Public post read, registered after /posts/me so the param route
	// cannot shadow it.
	api.Get("/posts/:id", s.GetPost)

	// Recommendation routes
	recommendations := protected.Group("/recommendations")
	recommendations.Get("/cache/stats", s.GetCacheStats)
	recommendations.Delete("/cache", s.ClearRecommendationCaches)
	recommendations.Get("/:kind", s.GetRecommendations)

	// Group routes
	groups := protected.Group("/groups")
	groups.Post("/", s.CreateGroup)
	groups.Get("/discover", s.DiscoverGroups)
	groups.Post("/:id/join", s.JoinGroup)
	groups.Get("/:id", s.GetGroup)

	// Trip routes
	trips := protected.Group("/trips")
	trips.Post("/", s.CreateTrip)
	trips.Get("/me", s.GetMyTrips)
	trips.Post("/:id/join", s.JoinTrip)
	trips.Post("/:id/respond", s.RespondParticipation)
	trips.Post("/:id/polls", s.CreateTripPoll)
	trips.Post("/:id/polls/:pollIndex/votes", s.VoteTripPoll)
	trips.Post("/:id/polls/:pollIndex/close", s.CloseTripPoll)
	trips.Post("/:id/messages", middleware.RateLimit(
		s.redis, 30, time.Minute, "trip_chat"), s.PostTripMessage)
	trips.Post("/:id/expenses", s.AddTripExpense)
	trips.Post("/:id/phase", s.TransitionTripPhase)
	trips.Get("/:id", s.GetTrip)
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
	ctx := c.Context()

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
		// Redis is optional; readiness only degrades, never fails, without it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
