package review

import (
	"context"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
	"github.com/Pesokrava/product_reviews/internal/sampler"
)

// Quota bounds of the random reviews endpoint
const (
	DefaultRandomWithImages = 3
	MaxRandomWithImages     = 10
	DefaultRandomTotal      = 6
	MinRandomTotal          = 1
	MaxRandomTotal          = 20

	// DefaultRandomPoolLimit bounds how many candidates Random loads per request
	DefaultRandomPoolLimit = 50
)

// RandomRequest asks for a random, image-balanced sample. Nil quotas take their defaults.
type RandomRequest struct {
	Filter     domain.ReviewFilter
	Status     domain.ReviewStatus
	WithImages *int
	Total      *int
}

// RandomResult is a sample plus the numbers describing how it was drawn
type RandomResult struct {
	Reviews                []*domain.Review
	Status                 domain.ReviewStatus
	WithImagesRequested    int
	TotalRequested         int
	TotalAvailable         int
	WithImagesAvailable    int
	WithoutImagesAvailable int
	SelectedWithImages     int
	SelectedWithoutImages  int
}

// ClampQuotas applies the defaults and bounds of the random endpoint
func ClampQuotas(withImages, total *int) (int, int) {
	img, tot := DefaultRandomWithImages, DefaultRandomTotal
	if withImages != nil {
		img = min(max(*withImages, 0), MaxRandomWithImages)
	}
	if total != nil {
		tot = min(max(*total, MinRandomTotal), MaxRandomTotal)
	}
	return img, tot
}

// Random loads a bounded pool of reviews matching the request and returns a shuffled
// sample that prefers reviews with image media. Status defaults to approved. Request
// pagination is ignored; the pool is the newest matches up to the pool limit.
func (s *Service) Random(ctx context.Context, req RandomRequest) (*RandomResult, error) {
	withImages, total := ClampQuotas(req.WithImages, req.Total)

	status := req.Status
	if status == "" {
		status = domain.StatusApproved
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidInput
	}

	filter := req.Filter
	filter.Statuses = []domain.ReviewStatus{status}
	filter.Limit, filter.Offset = s.poolLimit, 0

	pool, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to load random review pool", err)
		return nil, err
	}

	result := &RandomResult{
		Reviews:             []*domain.Review{},
		Status:              status,
		WithImagesRequested: withImages,
		TotalRequested:      total,
		TotalAvailable:      len(pool),
	}
	if len(pool) == 0 {
		return result, nil
	}

	sample := sampler.Sample(pool, withImages, total, s.random)
	metrics.ObserveSample(sample.SelectedWithImages, sample.SelectedWithoutImages)

	result.Reviews = sample.Reviews
	result.WithImagesAvailable = sample.WithImagesAvailable
	result.WithoutImagesAvailable = sample.WithoutImagesAvailable
	result.SelectedWithImages = sample.SelectedWithImages
	result.SelectedWithoutImages = sample.SelectedWithoutImages

	s.logger.WithFields(map[string]any{
		"status":        status,
		"available":     len(pool),
		"returned":      len(sample.Reviews),
		"with_images":   sample.SelectedWithImages,
		"without_image": sample.SelectedWithoutImages,
	}).Debug("Sampled random reviews")

	return result, nil
}
