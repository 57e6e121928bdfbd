package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

const pingTimeout = 5 * time.Second

// NewRedisClient creates a Redis client and pings it
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// WaitForRedis retries NewRedisClient until Redis answers or maxRetries is reached
func WaitForRedis(cfg *config.Config, maxRetries int, retryDelay time.Duration, log *logger.Logger) (*redis.Client, error) {
	var err error

	for attempt := range maxRetries {
		var client *redis.Client
		client, err = NewRedisClient(cfg)
		if err == nil {
			return client, nil
		}

		log.WithFields(map[string]any{
			"addr":    cfg.GetRedisAddr(),
			"attempt": attempt + 1,
			"of":      maxRetries,
		}).Warnf("Redis not ready: %v", err)

		if attempt < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d retries: %w", maxRetries, err)
}
