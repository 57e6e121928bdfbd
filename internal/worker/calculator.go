package worker

import (
	"context"
	"fmt"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

// StatsCache is the part of the Redis cache the worker writes through
type StatsCache interface {
	SetStats(ctx context.Context, stats *domain.ReviewStats) error
	InvalidateReviewsList(ctx context.Context, productID string) error
}

// Calculator recomputes review stats for a product and refreshes the cache
type Calculator struct {
	stats  domain.StatsRepository
	cache  StatsCache
	logger *logger.Logger
}

// NewCalculator creates a new stats calculator. cache may be nil.
func NewCalculator(stats domain.StatsRepository, cache StatsCache, logger *logger.Logger) *Calculator {
	return &Calculator{
		stats:  stats,
		cache:  cache,
		logger: logger,
	}
}

// CalculateAndUpdate recomputes the stats row from the approved reviews in the database.
// The whole aggregate is rebuilt every time, so a missed event heals on the next one.
func (c *Calculator) CalculateAndUpdate(ctx context.Context, productID string) error {
	stats, err := c.stats.Refresh(ctx, productID)
	metrics.ObserveStatsRefresh("worker", err)
	if err != nil {
		return fmt.Errorf("failed to refresh stats for product %s: %w", productID, err)
	}

	if c.cache != nil {
		if err := c.cache.SetStats(ctx, stats); err != nil {
			c.logger.Warnf("Failed to cache stats for product %s: %v", productID, err)
		}
		if err := c.cache.InvalidateReviewsList(ctx, productID); err != nil {
			c.logger.Warnf("Failed to invalidate reviews cache for product %s: %v", productID, err)
		}
	}

	c.logger.WithFields(map[string]any{
		"product_id":     productID,
		"average_rating": stats.AverageRating,
		"review_count":   stats.ReviewCount,
	}).Info("Successfully refreshed review stats")

	return nil
}
