package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

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

// MockProductLister is a mock implementation of ProductLister
type MockProductLister struct {
	mock.Mock
}

func (m *MockProductLister) ListProductIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockCache is a mock implementation of Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetStats(ctx context.Context, productID string) (*domain.ReviewStats, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewStats), args.Error(1)
}

func (m *MockCache) SetStats(ctx context.Context, stats *domain.ReviewStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func newTestService() (*Service, *MockStatsRepository, *MockProductLister, *MockCache) {
	repo := new(MockStatsRepository)
	products := new(MockProductLister)
	cache := new(MockCache)
	return NewService(repo, products, cache, logger.New("test")), repo, products, cache
}

func TestService_Get_CacheHit(t *testing.T) {
	service, repo, _, cache := newTestService()

	expected := &domain.ReviewStats{ProductID: "prod_1", AverageRating: 4.2, ReviewCount: 5}
	cache.On("GetStats", mock.Anything, "prod_1").Return(expected, nil)

	stats, err := service.Get(context.Background(), "prod_1")

	assert.NoError(t, err)
	assert.Equal(t, expected, stats)
	repo.AssertNotCalled(t, "GetByProductID", mock.Anything, mock.Anything)
}

func TestService_Get_CacheMiss(t *testing.T) {
	service, repo, _, cache := newTestService()

	expected := &domain.ReviewStats{ProductID: "prod_1", AverageRating: 3.0, ReviewCount: 1}
	cache.On("GetStats", mock.Anything, "prod_1").Return(nil, domain.ErrNotFound)
	repo.On("GetByProductID", mock.Anything, "prod_1").Return(expected, nil)
	cache.On("SetStats", mock.Anything, expected).Return(nil)

	stats, err := service.Get(context.Background(), "prod_1")

	assert.NoError(t, err)
	assert.Equal(t, expected, stats)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestService_Get_NotFound(t *testing.T) {
	service, repo, _, cache := newTestService()

	cache.On("GetStats", mock.Anything, "prod_1").Return(nil, errors.New("redis down"))
	repo.On("GetByProductID", mock.Anything, "prod_1").Return(nil, domain.ErrNotFound)

	stats, err := service.Get(context.Background(), "prod_1")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, stats)
	cache.AssertNotCalled(t, "SetStats", mock.Anything, mock.Anything)
}

func TestService_List_Success(t *testing.T) {
	service, repo, _, _ := newTestService()

	expected := []*domain.ReviewStats{{ProductID: "prod_1"}, {ProductID: "prod_2"}}
	repo.On("List", mock.Anything, 20, 0).Return(expected, nil)
	repo.On("Count", mock.Anything).Return(2, nil)

	stats, total, err := service.List(context.Background(), 500, -1)

	assert.NoError(t, err)
	assert.Equal(t, expected, stats)
	assert.Equal(t, 2, total)
	repo.AssertExpectations(t)
}

func TestService_Refresh_GivenProducts(t *testing.T) {
	service, repo, products, cache := newTestService()

	repo.On("Refresh", mock.Anything, "prod_1").Return(&domain.ReviewStats{ProductID: "prod_1"}, nil).Once()
	repo.On("Refresh", mock.Anything, "prod_2").Return(&domain.ReviewStats{ProductID: "prod_2"}, nil).Once()
	cache.On("SetStats", mock.Anything, mock.Anything).Return(nil)

	ids, err := service.Refresh(context.Background(), []string{"prod_1", "prod_2", "prod_1", ""})

	require.NoError(t, err)
	assert.Equal(t, []string{"prod_1", "prod_2"}, ids)
	repo.AssertExpectations(t)
	products.AssertNotCalled(t, "ListProductIDs", mock.Anything)
}

func TestService_Refresh_AllProducts(t *testing.T) {
	service, repo, products, cache := newTestService()

	products.On("ListProductIDs", mock.Anything).Return([]string{"prod_1"}, nil)
	repo.On("Refresh", mock.Anything, "prod_1").Return(&domain.ReviewStats{ProductID: "prod_1"}, nil)
	cache.On("SetStats", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	ids, err := service.Refresh(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"prod_1"}, ids)
}

func TestService_Refresh_NoProducts(t *testing.T) {
	service, repo, products, _ := newTestService()

	products.On("ListProductIDs", mock.Anything).Return([]string{}, nil)

	ids, err := service.Refresh(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, ids)
	repo.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestService_Refresh_Failure(t *testing.T) {
	service, repo, _, cache := newTestService()

	repo.On("Refresh", mock.Anything, "prod_1").Return(nil, errors.New("db down"))
	cache.On("SetStats", mock.Anything, mock.Anything).Return(nil).Maybe()

	_, err := service.Refresh(context.Background(), []string{"prod_1"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "prod_1")
}
