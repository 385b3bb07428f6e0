// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"murmur/internal/cache"
	"murmur/internal/config"
	"murmur/internal/database"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/notifications"
	"murmur/internal/repository"
	"murmur/internal/service"
	"murmur/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
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
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	likeRepo       repository.LikeRepository
	store          storage.AttachmentStore
	notifier       *notifications.Notifier
	postService    *service.PostService
}

// NewServer creates a new server instance with all dependencies
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
// Use this in tests or when a bootstrap layer establishes DB/Redis first.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("attachment store init failed: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	prom := fiberprometheus.New("murmur-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		postRepo:       postRepo,
		likeRepo:       likeRepo,
		store:          store,
		notifier:       notifications.NewNotifier(redisClient),
	}
	server.postService = service.NewPostService(
		postRepo,
		likeRepo,
		userRepo,
		store,
		&engagementPublisher{notifier: server.notifier},
		cfg.MaxPageSize,
	)

	middleware.InitMiddleware(cfg)

	return server, nil
}

// SetupMiddleware registers global middleware on the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: strings.Join([]string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodDelete, fiber.MethodOptions,
		}, ","),
	}))
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())

	s.promMiddleware.RegisterAt(app, "/metrics")
	app.Use(s.promMiddleware.Middleware)
}

// SetupRoutes registers all API routes.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/monitor", monitor.New())

	// Attachment references resolve against this static mount.
	app.Static(storage.RefPrefix, s.config.UploadDir)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 10, time.Minute, "auth"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, time.Minute, "auth"), s.Login)

	users := api.Group("/users")
	users.Get("/me", middleware.AuthRequired, s.GetMe)

	posts := api.Group("/posts")
	posts.Get("/", middleware.OptionalAuth, s.GetFeed)
	posts.Post("/", middleware.AuthRequired, middleware.RateLimit(s.redis, 30, time.Minute, "posts-write"), s.CreatePost)
	// Fixed paths must be registered before the :id routes.
	posts.Delete("/all", middleware.AuthRequired, s.DeleteAllPosts)
	posts.Delete("/cleanup-orphans", middleware.AuthRequired, s.CleanupOrphans)
	posts.Get("/:id", middleware.OptionalAuth, s.GetPost)
	posts.Post("/:id/like", middleware.AuthRequired, middleware.RateLimit(s.redis, 60, time.Minute, "posts-like"), s.ToggleLike)
}

// Shutdown releases server-owned resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

// engagementPublisher forwards engagement state changes to Redis pub/sub.
// Publish failures are recorded and swallowed: notification is an outward
// contract, not a condition for the operation's success.
type engagementPublisher struct {
	notifier *notifications.Notifier
}

func (p *engagementPublisher) PostCreated(ctx context.Context, post *models.Post) {
	event := notifications.Event{
		Type:       notifications.EventPostCreated,
		PostID:     post.ID,
		AuthorID:   post.AuthorID,
		TotalLikes: post.TotalLikes,
		At:         time.Now().UTC(),
	}
	if err := p.notifier.PublishBroadcast(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish post.created event",
			"post_id", post.ID, "error", err)
	}
}

func (p *engagementPublisher) LikeToggled(ctx context.Context, postID string, liked bool, totalLikes int64) {
	event := notifications.Event{
		Type:       notifications.EventLikeToggled,
		PostID:     postID,
		Liked:      &liked,
		TotalLikes: totalLikes,
		At:         time.Now().UTC(),
	}
	if err := p.notifier.PublishBroadcast(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish post.like_toggled event",
			"post_id", postID, "error", err)
	}
}
