// Command makeadmin promotes an existing user to the admin role.
//
//	makeadmin <email>
//
// It reads the same environment as the API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"booknook-backend/internal/config"
	infraCache "booknook-backend/internal/infrastructure/cache"
	"booknook-backend/internal/infrastructure/database"
	userRepo "booknook-backend/internal/domains/user/repository"
	userService "booknook-backend/internal/domains/user/service"
	"booknook-backend/internal/shared/apperror"
	"booknook-backend/pkg/logger"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: makeadmin <email>")
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(email string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.App.Environment)

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Redis is only needed to evict the cached user; the promotion itself
	// does not depend on it.
	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	defer redisCache.Close()
	if err := redisCache.Connect(ctx); err != nil {
		log.Printf("⚠️  Redis unavailable, cached user will expire on its own: %v", err)
	}

	users := userService.NewUserService(userRepo.NewPostgresRepository(db.Pool, redisCache, cfg.Cache.TTL), nil)

	user, err := users.PromoteToAdmin(ctx, email)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
			return errors.New(appErr.Message)
		}
		return fmt.Errorf("failed to promote user: %w", err)
	}

	fmt.Printf("User %s (%s) is now an admin\n", user.Username, user.Email)
	return nil
}
