package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"booknook-backend/internal/shared/metrics"
	"booknook-backend/internal/shared/response"
	"booknook-backend/pkg/cache"
	"booknook-backend/pkg/logger"
)

// RateLimiterConfig defines a fixed-window limit.
type RateLimiterConfig struct {
	MaxRequests int
	Window      time.Duration
	Prefix      string // key namespace, e.g. "ratelimit:auth"
}

// RateLimiter is an IP-based fixed-window limiter backed by the cache counters.
type RateLimiter struct {
	store  cache.Cache
	config RateLimiterConfig
}

func NewRateLimiter(store cache.Cache, config RateLimiterConfig) *RateLimiter {
	if config.Prefix == "" {
		config.Prefix = "ratelimit"
	}
	return &RateLimiter{store: store, config: config}
}

// Middleware rejects requests over the limit with 429. Store failures let
// the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter, err := rl.CheckLimit(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", map[string]interface{}{"error": err.Error()})
			c.Next()
			return
		}

		if !allowed {
			metrics.RateLimited.Inc()
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			response.ErrorResponse(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CheckLimit increments the counter for ip and reports whether the request fits.
// A counter without an expiry (a failed EXPIRE on an earlier hit) gets the
// window applied again, so a client is never locked out for good.
func (rl *RateLimiter) CheckLimit(ctx context.Context, ip string) (bool, time.Duration, error) {
	key := fmt.Sprintf("%s:%s", rl.config.Prefix, ip)

	count, err := rl.store.Increment(ctx, key)
	if err != nil {
		return false, 0, err
	}

	ttl, err := rl.store.TTL(ctx, key)
	if err != nil {
		return false, 0, err
	}
	if ttl < 0 {
		if err := rl.store.Expire(ctx, key, rl.config.Window); err != nil {
			return false, 0, err
		}
		ttl = rl.config.Window
	}

	if count > int64(rl.config.MaxRequests) {
		return false, ttl, nil
	}

	return true, 0, nil
}
