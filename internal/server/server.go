// Package server contains the HTTP handlers and routing for the web app.
package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/cli3338198/warbler/internal/cache"
	"github.com/cli3338198/warbler/internal/config"
	"github.com/cli3338198/warbler/internal/database"
	"github.com/cli3338198/warbler/internal/middleware"
	"github.com/cli3338198/warbler/internal/observability"
	"github.com/cli3338198/warbler/internal/repository"
	"github.com/cli3338198/warbler/internal/service"
	"github.com/cli3338198/warbler/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

//go:embed templates
var templatesFS embed.FS

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Manager

	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	messageRepo repository.MessageRepository

	authService    *service.AuthService
	userService    *service.UserService
	messageService *service.MessageService
	feedService    *service.FeedService
}

// NewServer creates a server instance, connecting to the database and Redis.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.NewHTTPMetrics("warbler"),
		sessions:       session.NewManager(redisClient, cfg.SessionSecret, cfg.SessionTTL),
		userRepo:       userRepo,
		followRepo:     followRepo,
		messageRepo:    messageRepo,
	}
	server.authService = service.NewAuthService(userRepo)
	server.userService = service.NewUserService(userRepo, followRepo)
	server.messageService = service.NewMessageService(messageRepo, userRepo)
	server.feedService = service.NewFeedService(messageRepo)

	return server, nil
}

// newApp builds the Fiber application with views, middleware, and routes.
func (s *Server) newApp() *fiber.App {
	templates, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("templates missing from binary: %v", err))
	}
	engine := html.NewFileSystem(http.FS(templates), ".html")

	app := fiber.New(fiber.Config{
		AppName:     "Warbler",
		Views:       engine,
		ViewsLayout: "layouts/main",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok && e.Code == fiber.StatusNotFound {
				return s.renderNotFound(c)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.Any("error", err))
			return s.renderServerError(c)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// Pages carry per-viewer state (session, flashes), so nothing here
	// may be cached.
	app.Use(middleware.NoCache())

	// Global rate limit per IP; form endpoints get tighter per-user
	// limits in SetupRoutes.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).
				SendString("Too many requests, please try again later.")
		},
	}))

	// Resolve the session cookie on every request so handlers and
	// templates can see the signed-in user.
	app.Use(s.CurrentUser())
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static("/static", "./web/static")

	app.Get("/", s.Home)

	app.Get("/signup", s.ShowSignup)
	app.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	app.Get("/login", s.ShowLogin)
	app.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Post("/logout", s.Logout)

	users := app.Group("/users", s.RequireUser())
	users.Get("/", s.ListUsers)
	// Specific routes before the generic /:id routes.
	users.Get("/profile", s.ShowProfileForm)
	users.Post("/profile", s.UpdateProfile)
	users.Post("/delete", s.DeleteUser)
	users.Post("/follow/:id", s.FollowUser)
	users.Post("/stop-following/:id", s.UnfollowUser)
	users.Get("/:id/following", s.ShowFollowing)
	users.Get("/:id/followers", s.ShowFollowers)
	users.Get("/:id/likes", s.ShowLikes)
	users.Get("/:id", s.ShowUser)

	messages := app.Group("/messages", s.RequireUser())
	messages.Get("/new", s.ShowNewMessage)
	messages.Post("/new", middleware.RateLimit(s.redis, 30, time.Minute, "create_message"), s.CreateMessage)
	messages.Post("/:id/delete", s.DeleteMessage)
	messages.Get("/:id", s.ShowMessage)

	likes := app.Group("/likes", s.RequireUser())
	likes.Post("/:id/add", s.ToggleLike)

	app.Use(func(c *fiber.Ctx) error {
		return s.renderNotFound(c)
	})
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
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
		// Sessions live in Redis, so the app is not ready without it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server.
func (s *Server) Start() error {
	app := s.newApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.Any("error", err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.Any("error", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.Any("error", rerr))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
