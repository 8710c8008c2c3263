package bootstrap

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/scam-honeypot/internal/config"
	httpmiddleware "github.com/wolfman30/scam-honeypot/internal/http/middleware"
	"github.com/wolfman30/scam-honeypot/internal/session"
	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRateLimiter returns nil when rate limiting is disabled. A Redis client
// makes the limit shared across replicas; otherwise a per-process token
// bucket is used.
func BuildRateLimiter(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) httpmiddleware.Limiter {
	if cfg == nil || cfg.RateLimitPerMinute <= 0 {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient != nil {
		logger.Info("redis rate limiting enabled", "per_minute", cfg.RateLimitPerMinute)
		return httpmiddleware.NewRedisRateLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute)
	}
	logger.Info("in-memory rate limiting enabled", "per_minute", cfg.RateLimitPerMinute, "burst", cfg.RateLimitBurst)
	return httpmiddleware.NewRateLimiter(float64(cfg.RateLimitPerMinute)/60, cfg.RateLimitBurst)
}

// BuildSessionStore returns the in-memory session store with the configured
// inactivity TTL.
func BuildSessionStore(cfg *appconfig.Config) *session.MemoryStore {
	if cfg == nil || cfg.SessionTTL <= 0 {
		return session.NewMemoryStore()
	}
	return session.NewMemoryStore(session.WithTTL(cfg.SessionTTL))
}
