package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardiosense-ai/platform/pkg/common/config"
	"github.com/cardiosense-ai/platform/pkg/common/logger"
)

// NewRedis builds a Redis client for the caller to own and close. A failed
// ping is logged but not fatal: callers treat the cache as optional.
func NewRedis(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable, cache disabled")
	} else {
		logger.Log.Info("Connected to Redis")
	}

	return client
}
