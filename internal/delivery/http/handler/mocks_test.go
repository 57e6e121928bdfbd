package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/product_reviews/internal/delivery/events"
	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/repository/cache"
	"github.com/Pesokrava/product_reviews/internal/usecase/review"
	"github.com/Pesokrava/product_reviews/internal/usecase/stats"
)

// MockReviewRepository is a mock implementation of domain.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, r *domain.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReviewRepository) CreateBatch(ctx context.Context, reviews []*domain.Review) error {
	return m.Called(ctx, reviews).Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) List(ctx context.Context, filter domain.ReviewFilter) ([]*domain.Review, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) Count(ctx context.Context, filter domain.ReviewFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewRepository) FindByProductAndEmail(ctx context.Context, productID, email string) (*domain.Review, error) {
	args := m.Called(ctx, productID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) ExistsForOrderLineItem(ctx context.Context, orderID, orderLineItemID string) (bool, error) {
	args := m.Called(ctx, orderID, orderLineItemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, r *domain.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockReviewRepository) UpdateVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	return m.Called(ctx, id, verified).Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewRepository) ListProductIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockResponseRepository is a mock implementation of domain.ReviewResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, r *domain.ReviewResponse) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockResponseRepository) GetByReviewID(ctx context.Context, reviewID uuid.UUID) (*domain.ReviewResponse, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewResponse), args.Error(1)
}

func (m *MockResponseRepository) Update(ctx context.Context, r *domain.ReviewResponse) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockResponseRepository) Delete(ctx context.Context, reviewID uuid.UUID) error {
	return m.Called(ctx, reviewID).Error(0)
}

// MockCache implements the review and stats cache interfaces
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetReviewsList(ctx context.Context, productID string, limit, offset int) (*cache.ReviewPage, error) {
	args := m.Called(ctx, productID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.ReviewPage), args.Error(1)
}

func (m *MockCache) SetReviewsList(ctx context.Context, productID string, limit, offset int, page *cache.ReviewPage) error {
	return m.Called(ctx, productID, limit, offset, page).Error(0)
}

func (m *MockCache) InvalidateProduct(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockCache) GetStats(ctx context.Context, productID string) (*domain.ReviewStats, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewStats), args.Error(1)
}

func (m *MockCache) SetStats(ctx context.Context, s *domain.ReviewStats) error {
	return m.Called(ctx, s).Error(0)
}

// MockStatsRepository is a mock implementation of domain.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Refresh(ctx context.Context, productID string) (*domain.ReviewStats, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewStats), args.Error(1)
}

func (m *MockStatsRepository) GetByProductID(ctx context.Context, productID string) (*domain.ReviewStats, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewStats), args.Error(1)
}

func (m *MockStatsRepository) List(ctx context.Context, limit, offset int) ([]*domain.ReviewStats, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewStats), args.Error(1)
}

func (m *MockStatsRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of review.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	return m.Called(ctx, subject, data).Error(0)
}

type reviewDeps struct {
	repo      *MockReviewRepository
	responses *MockResponseRepository
	cache     *MockCache
}

func newReviewService(t *testing.T, opts ...review.Option) (*review.Service, reviewDeps) {
	t.Helper()
	deps := reviewDeps{
		repo:      new(MockReviewRepository),
		responses: new(MockResponseRepository),
		cache:     new(MockCache),
	}
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, events.Subject, mock.Anything).Return(nil).Maybe()

	return review.NewService(deps.repo, deps.responses, deps.cache, publisher, logger.New("test"), opts...), deps
}

func newStatsService() (*stats.Service, *MockStatsRepository, *MockReviewRepository, *MockCache) {
	repo := new(MockStatsRepository)
	products := new(MockReviewRepository)
	c := new(MockCache)
	return stats.NewService(repo, products, c, logger.New("test")), repo, products, c
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
