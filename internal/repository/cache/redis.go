package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

const (
	reviewsCacheName = "product_reviews"
	statsCacheName   = "review_stats"
)

// ReviewPage is a cached page of approved storefront reviews
type ReviewPage struct {
	Reviews []*domain.Review `json:"reviews"`
	Count   int              `json:"count"`
}

// RedisCache implements caching for storefront review lists and review stats
type RedisCache struct {
	client         *redis.Client
	reviewsListTTL time.Duration
	statsTTL       time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, reviewsListTTL, statsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         client,
		reviewsListTTL: reviewsListTTL,
		statsTTL:       statsTTL,
	}
}

func statsKey(productID string) string {
	return fmt.Sprintf("product:%s:review_stats", productID)
}

func reviewsListKey(productID string, limit, offset int) string {
	return fmt.Sprintf("product:%s:reviews:limit:%d:offset:%d", productID, limit, offset)
}

func cacheKeysSet(productID string) string {
	return fmt.Sprintf("product:%s:cache_keys", productID)
}

// GetStats retrieves cached stats, returning domain.ErrNotFound on a miss
func (c *RedisCache) GetStats(ctx context.Context, productID string) (*domain.ReviewStats, error) {
	var stats domain.ReviewStats
	if err := c.get(ctx, statsCacheName, statsKey(productID), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetStats stores the stats of a product
func (c *RedisCache) SetStats(ctx context.Context, stats *domain.ReviewStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	metrics.ObserveCache(statsCacheName, "set")
	return c.client.Set(ctx, statsKey(stats.ProductID), data, c.statsTTL).Err()
}

// GetReviewsList retrieves a cached page of storefront reviews for a product
func (c *RedisCache) GetReviewsList(ctx context.Context, productID string, limit, offset int) (*ReviewPage, error) {
	var page ReviewPage
	if err := c.get(ctx, reviewsCacheName, reviewsListKey(productID, limit, offset), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SetReviewsList stores a page of reviews and tracks the key in a per-product SET
func (c *RedisCache) SetReviewsList(ctx context.Context, productID string, limit, offset int, page *ReviewPage) error {
	key := reviewsListKey(productID, limit, offset)
	trackingKey := cacheKeysSet(productID)

	data, err := json.Marshal(page)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.reviewsListTTL)
	pipe.SAdd(ctx, trackingKey, key)
	pipe.Expire(ctx, trackingKey, c.reviewsListTTL)
	_, err = pipe.Exec(ctx)

	metrics.ObserveCache(reviewsCacheName, "set")
	return err
}

// InvalidateReviewsList removes every cached review page for a product
func (c *RedisCache) InvalidateReviewsList(ctx context.Context, productID string) error {
	trackingKey := cacheKeysSet(productID)

	keys, err := c.client.SMembers(ctx, trackingKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	metrics.ObserveCache(reviewsCacheName, "del")
	keys = append(keys, trackingKey)
	return c.client.Unlink(ctx, keys...).Err()
}

// InvalidateProduct drops the cached stats and review pages of a product
func (c *RedisCache) InvalidateProduct(ctx context.Context, productID string) error {
	metrics.ObserveCache(statsCacheName, "del")
	if err := c.client.Del(ctx, statsKey(productID)).Err(); err != nil {
		return err
	}

	return c.InvalidateReviewsList(ctx, productID)
}

func (c *RedisCache) get(ctx context.Context, cacheName, key string, dst any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCache(cacheName, "miss")
		return domain.ErrNotFound
	}
	if err != nil {
		metrics.ObserveCache(cacheName, "error")
		return err
	}

	metrics.ObserveCache(cacheName, "hit")
	return json.Unmarshal(data, dst)
}
