package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

func setupCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, 2*time.Minute, 5*time.Minute), mr
}

func TestRedisCache_StatsRoundTrip(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	_, err := c.GetStats(ctx, "prod_1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, c.SetStats(ctx, &domain.ReviewStats{ProductID: "prod_1", AverageRating: 4.5, ReviewCount: 2}))

	stats, err := c.GetStats(ctx, "prod_1")
	require.NoError(t, err)
	assert.Equal(t, 4.5, stats.AverageRating)
	assert.Equal(t, 5*time.Minute, mr.TTL("product:prod_1:review_stats"))
}

func TestRedisCache_ReviewsListExpires(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	page := &ReviewPage{
		Reviews: []*domain.Review{{ID: uuid.New(), ProductID: "prod_1", Rating: 5, Status: domain.StatusApproved}},
		Count:   1,
	}
	require.NoError(t, c.SetReviewsList(ctx, "prod_1", 20, 0, page))

	cached, err := c.GetReviewsList(ctx, "prod_1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Count)
	assert.Equal(t, page.Reviews[0].ID, cached.Reviews[0].ID)

	mr.FastForward(3 * time.Minute)

	_, err = c.GetReviewsList(ctx, "prod_1", 20, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisCache_InvalidateProduct(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetStats(ctx, &domain.ReviewStats{ProductID: "prod_1"}))
	require.NoError(t, c.SetReviewsList(ctx, "prod_1", 20, 0, &ReviewPage{}))
	require.NoError(t, c.SetReviewsList(ctx, "prod_1", 20, 20, &ReviewPage{}))
	require.NoError(t, c.SetReviewsList(ctx, "prod_2", 20, 0, &ReviewPage{}))

	require.NoError(t, c.InvalidateProduct(ctx, "prod_1"))

	assert.False(t, mr.Exists("product:prod_1:review_stats"))
	assert.False(t, mr.Exists("product:prod_1:reviews:limit:20:offset:0"))
	assert.False(t, mr.Exists("product:prod_1:reviews:limit:20:offset:20"))
	assert.False(t, mr.Exists("product:prod_1:cache_keys"))
	assert.True(t, mr.Exists("product:prod_2:reviews:limit:20:offset:0"))
}

func TestRedisCache_InvalidateWithoutEntries(t *testing.T) {
	c, _ := setupCache(t)

	assert.NoError(t, c.InvalidateProduct(context.Background(), "prod_unknown"))
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := setupCache(t)
	mr.Close()

	_, err := c.GetStats(context.Background(), "prod_1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
