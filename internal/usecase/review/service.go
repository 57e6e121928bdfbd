package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/delivery/events"
	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/product_reviews/internal/pkg/validator"
	"github.com/Pesokrava/product_reviews/internal/repository/cache"
	"github.com/Pesokrava/product_reviews/internal/sampler"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
	publishTimeout   = 5 * time.Second
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Cache is the storefront review cache
type Cache interface {
	GetReviewsList(ctx context.Context, productID string, limit, offset int) (*cache.ReviewPage, error)
	SetReviewsList(ctx context.Context, productID string, limit, offset int, page *cache.ReviewPage) error
	InvalidateProduct(ctx context.Context, productID string) error
}

// Service handles review business logic with caching and event publishing
type Service struct {
	repo        domain.ReviewRepository
	responses   domain.ReviewResponseRepository
	cache       Cache
	publisher   EventPublisher
	validate    *validator.Validate
	logger      *logger.Logger
	mediaPrefix string
	random      sampler.Source
	poolLimit   int
}

// Option customises a Service
type Option func(*Service)

// WithMediaURLPrefix sets the prefix PrefixMediaURLs prepends to stored media keys
func WithMediaURLPrefix(prefix string) Option {
	return func(s *Service) { s.mediaPrefix = prefix }
}

// WithRandomSource replaces the randomness used by Random
func WithRandomSource(src sampler.Source) Option {
	return func(s *Service) { s.random = src }
}

// WithRandomPoolLimit caps the candidate pool Random samples from. Non-positive values keep the default.
func WithRandomPoolLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.poolLimit = limit
		}
	}
}

// NewService creates a new review service
func NewService(
	repo domain.ReviewRepository,
	responses domain.ReviewResponseRepository,
	cache Cache,
	publisher EventPublisher,
	log *logger.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		repo:      repo,
		responses: responses,
		cache:     cache,
		publisher: publisher,
		validate:  pkgvalidator.Get(),
		logger:    log,
		random:    sampler.Default,
		poolLimit: DefaultRandomPoolLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates a new review with its images
func (s *Service) Create(ctx context.Context, review *domain.Review) error {
	if review.Status == "" {
		review.Status = domain.StatusPending
	}

	if err := s.validate.Struct(review); err != nil {
		s.logger.Error("Review validation failed", err)
		return invalid(err)
	}

	if err := s.repo.Create(ctx, review); err != nil {
		s.logger.Error("Failed to create review", err)
		return err
	}

	s.afterWrite(ctx, events.ReviewCreated, review)

	s.logger.WithFields(map[string]any{
		"review_id":  review.ID,
		"product_id": review.ProductID,
		"rating":     review.Rating,
	}).Info("Review created successfully")

	return nil
}

// GetByID retrieves a review by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Review not found: %s", id)
		} else {
			s.logger.Error("Failed to get review", err)
		}
		return nil, err
	}

	return review, nil
}

// List retrieves reviews matching the filter together with the total match count
func (s *Service) List(ctx context.Context, filter domain.ReviewFilter) ([]*domain.Review, int, error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)

	reviews, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list reviews", err)
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count reviews", err)
		return nil, 0, err
	}

	return reviews, total, nil
}

// ListByProduct retrieves the approved reviews of a product for the storefront, with caching
func (s *Service) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*domain.Review, int, error) {
	limit, offset = clampPage(limit, offset)

	page, err := s.cache.GetReviewsList(ctx, productID, limit, offset)
	if err == nil {
		s.logger.Debugf("Cache hit for product %s reviews (limit=%d, offset=%d)", productID, limit, offset)
		return page.Reviews, page.Count, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnf("Failed to read reviews cache for product %s: %v", productID, err)
	}

	filter := domain.ReviewFilter{
		ProductIDs: []string{productID},
		Statuses:   []domain.ReviewStatus{domain.StatusApproved},
		Limit:      limit,
		Offset:     offset,
	}

	reviews, total, err := s.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if err := s.cache.SetReviewsList(ctx, productID, limit, offset, &cache.ReviewPage{Reviews: reviews, Count: total}); err != nil {
		s.logger.Warnf("Failed to cache reviews for product %s (limit=%d, offset=%d): %v", productID, limit, offset, err)
	}

	return reviews, total, nil
}

// ReviewPatch holds the fields an admin may edit; nil fields are left unchanged
type ReviewPatch struct {
	Title   *string       `validate:"omitempty,max=255"`
	Content *string       `validate:"omitempty,max=5000"`
	Rating  *int          `validate:"omitempty,min=1,max=5"`
	Images  *[]ImageInput `validate:"omitempty,dive"`
}

// Update applies a patch to an existing review
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch ReviewPatch) (*domain.Review, error) {
	if err := s.validate.Struct(patch); err != nil {
		s.logger.Error("Review patch validation failed", err)
		return nil, invalid(err)
	}

	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get existing review", err)
		return nil, err
	}

	if patch.Title != nil {
		review.Title = patch.Title
	}
	if patch.Content != nil {
		review.Content = patch.Content
	}
	if patch.Rating != nil {
		review.Rating = *patch.Rating
	}
	if patch.Images != nil {
		review.Images = toImages(*patch.Images)
	}

	if err := s.repo.Update(ctx, review); err != nil {
		s.logger.Error("Failed to update review", err)
		return nil, err
	}

	s.afterWrite(ctx, events.ReviewUpdated, review)

	s.logger.WithFields(map[string]any{
		"review_id":  review.ID,
		"product_id": review.ProductID,
		"rating":     review.Rating,
	}).Info("Review updated successfully")

	return review, nil
}

// UpdateStatus moves a review to a moderation status and returns the updated review
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) (*domain.Review, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidInput
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error("Failed to update review status", err)
		return nil, err
	}

	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to reload review", err)
		return nil, err
	}

	s.afterWrite(ctx, events.ReviewStatusChanged, review)

	s.logger.WithFields(map[string]any{
		"review_id": id,
		"status":    status,
	}).Info("Review status updated")

	return review, nil
}

// UpdateVerified sets the verification flag and returns the updated review
func (s *Service) UpdateVerified(ctx context.Context, id uuid.UUID, verified bool) (*domain.Review, error) {
	if err := s.repo.UpdateVerified(ctx, id, verified); err != nil {
		s.logger.Error("Failed to update review verification", err)
		return nil, err
	}

	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to reload review", err)
		return nil, err
	}

	s.afterWrite(ctx, events.ReviewVerifiedChanged, review)

	return review, nil
}

// Delete soft-deletes a review
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get review for deletion", err)
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete review", err)
		return err
	}

	s.afterWrite(ctx, events.ReviewDeleted, review)

	s.logger.WithFields(map[string]any{
		"review_id":  id,
		"product_id": review.ProductID,
	}).Info("Review deleted successfully")

	return nil
}

// afterWrite drops the product's cached reads and announces the change
func (s *Service) afterWrite(ctx context.Context, eventType events.EventType, review *domain.Review) {
	if err := s.cache.InvalidateProduct(ctx, review.ProductID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", review.ProductID, err)
	}

	s.publishEvent(events.NewReviewEvent(eventType, review))
}

// publishEvent publishes a review event without blocking the caller
func (s *Service) publishEvent(event events.ReviewEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal %s event for review %s", event.EventType, event.ReviewID)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, events.Subject, data); err != nil {
			s.logger.Errorf(err, "Failed to publish %s event for review %s", event.EventType, event.ReviewID)
		}
	}()
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	return limit, max(offset, 0)
}

// invalid wraps a validation failure so handlers can report which fields were rejected
func invalid(err error) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pkgvalidator.Describe(err))
}
