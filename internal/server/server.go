// Package server contains the HTML page handlers of the blog.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/featureflags"
	"blogicum/internal/middleware"
	"blogicum/internal/repository"
	"blogicum/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const csrfContextKey = "csrf"

var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// initMetrics registers the HTTP collectors once per process.
func initMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMW = fiberprometheus.New(serviceName)
	})
	return promMW
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	sessions       *middleware.Sessions
	promMiddleware *fiberprometheus.FiberPrometheus
	flags          *featureflags.Flags
	postService    *service.PostService
	commentService *service.CommentService
	userService    *service.UserService
}

// NewServerWithDeps builds the server over open connections. rdb may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	locationRepo := repository.NewLocationRepository(db)

	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour

	// LoadConfig has already validated FEATURE_FLAGS
	flags, err := featureflags.Parse(cfg.FeatureFlags)
	if err != nil {
		flags = featureflags.Default()
	}

	return &Server{
		config:         cfg,
		db:             db,
		redis:          rdb,
		sessions:       middleware.NewSessions(cfg.JWTSecret, ttl, rdb),
		promMiddleware: initMetrics("blogicum"),
		flags:          flags,
		postService: service.NewPostService(
			postRepo, commentRepo, categoryRepo, locationRepo, userRepo, cfg.PostsPerPage),
		commentService: service.NewCommentService(commentRepo, postRepo),
		userService:    service.NewUserService(userRepo),
	}
}

// App builds the Fiber application with middleware and routes. The result is cached.
func (s *Server) App() (*fiber.App, error) {
	if s.app != nil {
		return s.app, nil
	}

	engine, err := newViewEngine()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "Blogicum",
		Views:        engine,
		ErrorHandler: s.errorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Trace span first so the context middleware can copy its id
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	// Forms carry the token in a hidden _csrf field
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:_csrf",
		CookieName:     "blogicum_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   s.config.IsProduction(),
		Expiration:     2 * time.Hour,
		ContextKey:     csrfContextKey,
		Next: func(c *fiber.Ctx) bool {
			return s.config.Env == "test"
		},
	}))

	// Resolve the session cookie into the current actor
	app.Use(middleware.LoadActor(s.sessions, s.userService.LoadActor))

	// Render handler errors here so the logger and metrics above see the real status
	app.Use(s.errorPages)
}

func (s *Server) errorPages(c *fiber.Ctx) error {
	if err := c.Next(); err != nil {
		return s.errorHandler(c, err)
	}
	return nil
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	app.Get("/", s.PostList)

	login := middleware.LoginRequired()

	// Specific /posts routes before /posts/:id
	posts := app.Group("/posts")
	posts.Get("/create/", login, s.PostCreateForm)
	posts.Post("/create/", login, middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.PostCreate)
	posts.Get("/:id<int>/", s.PostDetail)
	posts.Get("/:id<int>/edit/", login, s.PostEditForm)
	posts.Post("/:id<int>/edit/", login, s.PostEdit)
	posts.Get("/:id<int>/delete/", login, s.PostDeleteConfirm)
	posts.Post("/:id<int>/delete/", login, s.PostDelete)
	posts.Post("/:id<int>/comment/", login, s.feature(featureflags.Comments), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CommentCreate)
	posts.Get("/:id<int>/edit_comment/:comment_id<int>/", login, s.CommentEditForm)
	posts.Post("/:id<int>/edit_comment/:comment_id<int>/", login, s.CommentEdit)
	posts.Get("/:id<int>/delete_comment/:comment_id<int>/", login, s.CommentDeleteConfirm)
	posts.Post("/:id<int>/delete_comment/:comment_id<int>/", login, s.CommentDelete)

	app.Get("/category/:slug/", s.CategoryPosts)

	// /profile/edit/ before /profile/:username/
	app.Get("/profile/edit/", login, s.ProfileEditForm)
	app.Post("/profile/edit/", login, s.ProfileEdit)
	app.Get("/profile/:username/", s.Profile)

	auth := app.Group("/auth")
	auth.Get("/login/", s.LoginForm)
	auth.Post("/login/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout/", s.Logout)
	registration := s.feature(featureflags.Registration)
	auth.Get("/registration/", registration, s.RegistrationForm)
	auth.Post("/registration/", registration, middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "registration"), s.Register)

	pages := app.Group("/pages")
	pages.Get("/about/", s.staticPage("pages/about"))
	pages.Get("/rules/", s.staticPage("pages/rules"))
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without it
// the app runs degraded rather than unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	case redisStatus != "healthy":
		overallStatus = "degraded"
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

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	app, err := s.App()
	if err != nil {
		return err
	}
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
