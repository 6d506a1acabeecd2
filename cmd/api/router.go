package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"booknook-backend/internal/infrastructure/database"
	"booknook-backend/internal/shared"
	"booknook-backend/internal/shared/metrics"
	"booknook-backend/internal/shared/middleware"
	"booknook-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
		middleware.ErrorHandler(),
	)

	router.GET("/", rootHandler(c.Config.App.Version))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	protect := middleware.Protect(c.JWTManager, c.AuthService)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c.Config.App.Version, c.DB, c.Cache))

		setupAuthRoutes(v1, c, protect)
		setupBookRoutes(v1, c, protect)
		setupReviewRoutes(v1, c, protect)
		setupUserRoutes(v1, c, protect)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container, protect gin.HandlerFunc) {
	auth := v1.Group("/auth")
	{
		limited := c.AuthRateLimiter.Middleware()
		auth.POST("/register", limited, c.AuthHandler.Register)
		auth.POST("/login", limited, c.AuthHandler.Login)
		auth.GET("/me", protect, c.AuthHandler.Me)
		auth.GET("/logout", protect, c.AuthHandler.Logout)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container, protect gin.HandlerFunc) {
	books := v1.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/:id", c.BookHandler.GetBookDetail)
	}

	admin := v1.Group("/books")
	admin.Use(protect, middleware.Authorize(shared.RoleAdmin))
	{
		admin.GET("/my-books", c.BookHandler.MyBooks)
		admin.POST("", c.BookHandler.CreateBook)
		admin.PUT("/:id", c.BookHandler.UpdateBook)
		admin.DELETE("/:id", c.BookHandler.DeleteBook)
	}
}

// ========================================
// REVIEW ROUTES
// ========================================
func setupReviewRoutes(v1 *gin.RouterGroup, c *container.Container, protect gin.HandlerFunc) {
	reviews := v1.Group("/reviews")
	{
		reviews.GET("", c.ReviewHandler.ListReviews)
		reviews.GET("/:id", c.ReviewHandler.GetReview)
	}

	userReviews := v1.Group("/reviews")
	userReviews.Use(protect)
	{
		userReviews.POST("", c.ReviewHandler.CreateReview)
		userReviews.PUT("/:id", c.ReviewHandler.UpdateReview)
		userReviews.DELETE("/:id", c.ReviewHandler.DeleteReview)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container, protect gin.HandlerFunc) {
	users := v1.Group("/users")
	users.Use(protect)
	{
		users.GET("/:id", c.UserHandler.GetProfile)
		users.PUT("/:id", c.UserHandler.UpdateProfile)
		users.POST("/:id/reading-list", c.UserHandler.AddToReadingList)
		users.DELETE("/:id/reading-list/:bookId", c.UserHandler.RemoveFromReadingList)
	}
}

func rootHandler(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "BookNook API is running",
			"apiVersion": version,
		})
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// poolDB is the database as seen by the health check.
type poolDB interface {
	pinger
	Stats() (*database.PoolStats, error)
}

// healthCheckHandler reports 503 when the database is down. Redis being
// down only marks the service degraded.
func healthCheckHandler(version string, db poolDB, redis pinger) gin.HandlerFunc {
	check := func(ctx context.Context, p pinger) string {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return "ok"
	}

	return func(c *gin.Context) {
		dbStatus := check(c.Request.Context(), db)
		redisStatus := check(c.Request.Context(), redis)

		status := "ok"
		if dbStatus != "ok" || redisStatus != "ok" {
			status = "degraded"
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		health := gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   version,
			"services": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		}
		if stats, err := db.Stats(); err == nil {
			health["pool"] = stats
		}

		c.JSON(statusCode, health)
	}
}
