package stats

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	// refreshConcurrency bounds the number of recompute queries in flight
	refreshConcurrency = 4
)

// ProductLister lists the products that have reviews
type ProductLister interface {
	ListProductIDs(ctx context.Context) ([]string, error)
}

// Cache is the stats part of the Redis cache
type Cache interface {
	GetStats(ctx context.Context, productID string) (*domain.ReviewStats, error)
	SetStats(ctx context.Context, stats *domain.ReviewStats) error
}

// Service handles review stats reads and on-demand recomputation
type Service struct {
	repo     domain.StatsRepository
	products ProductLister
	cache    Cache
	logger   *logger.Logger
}

// NewService creates a new stats service
func NewService(repo domain.StatsRepository, products ProductLister, cache Cache, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		cache:    cache,
		logger:   log,
	}
}

// Get retrieves the stats of a product, reading through the cache
func (s *Service) Get(ctx context.Context, productID string) (*domain.ReviewStats, error) {
	stats, err := s.cache.GetStats(ctx, productID)
	if err == nil {
		s.logger.Debugf("Cache hit for product %s stats", productID)
		return stats, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnf("Failed to read stats cache for product %s: %v", productID, err)
	}

	stats, err = s.repo.GetByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Stats not found for product %s", productID)
		} else {
			s.logger.Error("Failed to get review stats", err)
		}
		return nil, err
	}

	if err := s.cache.SetStats(ctx, stats); err != nil {
		s.logger.Warnf("Failed to cache stats for product %s: %v", productID, err)
	}

	return stats, nil
}

// List retrieves a paginated list of review stats
func (s *Service) List(ctx context.Context, limit, offset int) ([]*domain.ReviewStats, int, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	stats, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list review stats", err)
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count review stats", err)
		return nil, 0, err
	}

	return stats, total, nil
}

// Refresh recomputes the stats of the given products, or of every reviewed product when
// none are given, and returns the ids that were refreshed.
func (s *Service) Refresh(ctx context.Context, productIDs []string) ([]string, error) {
	if len(productIDs) == 0 {
		ids, err := s.products.ListProductIDs(ctx)
		if err != nil {
			s.logger.Error("Failed to list reviewed products", err)
			return nil, err
		}
		productIDs = ids
	}

	productIDs = dedupe(productIDs)
	if len(productIDs) == 0 {
		return []string{}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)

	for _, id := range productIDs {
		g.Go(func() error {
			stats, err := s.repo.Refresh(gctx, id)
			metrics.ObserveStatsRefresh("api", err)
			if err != nil {
				return fmt.Errorf("failed to refresh stats for product %s: %w", id, err)
			}

			if err := s.cache.SetStats(gctx, stats); err != nil {
				s.logger.Warnf("Failed to cache stats for product %s: %v", id, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("Stats refresh failed", err)
		return nil, err
	}

	s.logger.Infof("Refreshed review stats for %d products", len(productIDs))
	return productIDs, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
