package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/config"
	"github.com/jagwell/jagwell/util"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRateLimit  = 5
	defaultRateWindow = 15 * time.Minute
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

func rateLimitKey(endpoint, clientIP string) string {
	return fmt.Sprintf("ratelimit:%s:%s", endpoint, clientIP)
}

// RateLimiter counts requests per client IP and path in Redis and rejects
// the ones over the limit with 429. Without Redis every request passes.
func RateLimiter(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limit == 0 {
		cfg.Limit = defaultRateLimit
	}
	if cfg.Window == 0 {
		cfg.Window = defaultRateWindow
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		endpoint := c.Request.URL.Path

		allowed, err := checkRateLimit(c.Request.Context(), rateLimitKey(endpoint, clientIP), cfg.Limit, cfg.Window)
		if err != nil {
			util.Log().Warn().Err(err).Str("ip", clientIP).Str("path", endpoint).Msg("rate limit check failed")
			c.Next()
			return
		}

		if !allowed {
			util.LogRateLimitExceeded(GetDB(c), clientIP, endpoint)
			util.CallTooManyRequests(c, util.APIErrorParams{
				Msg: "Too many requests. Please try again later.",
				Err: util.ErrRateLimited,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkRateLimit reports whether the request identified by key is within limit.
func checkRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return true, nil
	}

	pipe := rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	return incrCmd.Val() <= int64(limit), nil
}

// ResetRateLimit clears the counter for a client and path, e.g. after a successful login.
func ResetRateLimit(ctx context.Context, clientIP, endpoint string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, rateLimitKey(endpoint, clientIP)).Err()
}
