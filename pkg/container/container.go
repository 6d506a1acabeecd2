package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"booknook-backend/internal/config"
	infraCache "booknook-backend/internal/infrastructure/cache"
	"booknook-backend/internal/infrastructure/database"
	"booknook-backend/internal/shared/metrics"
	"booknook-backend/internal/shared/middleware"
	"booknook-backend/pkg/jwt"
	"booknook-backend/pkg/logger"

	// User domain
	userHandler "booknook-backend/internal/domains/user/handler"
	userRepo "booknook-backend/internal/domains/user/repository"
	userService "booknook-backend/internal/domains/user/service"

	// Book domain
	bookHandler "booknook-backend/internal/domains/book/handler"
	bookRepo "booknook-backend/internal/domains/book/repository"
	bookService "booknook-backend/internal/domains/book/service"

	// Review domain
	reviewHandler "booknook-backend/internal/domains/review/handler"
	reviewRepo "booknook-backend/internal/domains/review/repository"
	reviewService "booknook-backend/internal/domains/review/service"
)

// Container holds every long-lived dependency of the API process.
// Build order: config → infrastructure → repositories → services → handlers.
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      *infraCache.RedisCache
	JWTManager *jwt.Manager

	// Repositories
	UserRepo   userRepo.UserRepository
	BookRepo   bookRepo.RepositoryInterface
	ReviewRepo reviewRepo.ReviewRepository

	// Services
	AuthService   userService.AuthService
	UserService   userService.UserService
	BookService   bookService.ServiceInterface
	ReviewService reviewService.ServiceInterface

	// Handlers
	AuthHandler   *userHandler.AuthHandler
	UserHandler   *userHandler.UserHandler
	BookHandler   *bookHandler.Handler
	ReviewHandler *reviewHandler.ReviewHandler

	// Middleware with state
	AuthRateLimiter *middleware.RateLimiter
}

// NewContainer builds the full dependency graph. A database that cannot be
// reached after the configured retries is fatal; Redis is not.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)
	metrics.Init()
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	if err := c.initDatabase(); err != nil {
		return nil, err
	}

	c.initCache()
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	c.AuthRateLimiter = middleware.NewRateLimiter(c.Cache, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimit.AuthMax,
		Window:      cfg.RateLimit.AuthWindow,
		Prefix:      "ratelimit:auth",
	})

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initDatabase() error {
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return fmt.Errorf("database health check failed: %w", err)
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")
	return nil
}

// initCache connects Redis. A failed connect is logged and the client is
// kept: cache reads fall back to the database and the rate limiter fails open.
func (c *Container) initCache() {
	log.Println("🔴 Connecting to Redis...")

	rc := infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rc.Connect(context.Background()); err != nil {
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}
	c.Cache = rc
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Cache, c.Config.Cache.TTL)
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.ReviewRepo = reviewRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.BookService = bookService.NewService(c.BookRepo, c.Cache, c.Config.Cache.TTL)

	// Review writes change book ratings and profile edits change reviewer
	// names, so both evict the book cache.
	c.AuthService = userService.NewAuthService(c.UserRepo, c.JWTManager)
	c.UserService = userService.NewUserService(c.UserRepo, c.BookService)
	c.ReviewService = reviewService.NewReviewService(c.ReviewRepo, c.BookService)
}

func (c *Container) initHandlers() {
	c.AuthHandler = userHandler.NewAuthHandler(c.AuthService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.BookHandler = bookHandler.NewHandler(c.BookService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
}

// Cleanup releases the pool and the Redis client.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.DB != nil {
		c.DB.Close()
	}

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
