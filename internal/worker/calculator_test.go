package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/repository/cache"
	"github.com/Pesokrava/product_reviews/internal/repository/postgres"
)

var statsColumns = []string{
	"product_id", "average_rating", "review_count", "rating_count_1", "rating_count_2", "rating_count_3",
	"rating_count_4", "rating_count_5", "created_at", "updated_at",
}

func setupCalculator(t *testing.T) (*Calculator, sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := postgres.NewStatsRepository(sqlx.NewDb(db, "sqlmock"))
	redisCache := cache.NewRedisCache(client, time.Minute, time.Minute)

	return NewCalculator(repo, redisCache, logger.New("test")), mock, mr
}

func TestCalculator_CalculateAndUpdate_Success(t *testing.T) {
	calculator, mock, mr := setupCalculator(t)
	now := time.Now()

	mr.Set("product:prod_1:reviews:limit:20:offset:0", "stale")
	mr.SAdd("product:prod_1:cache_keys", "product:prod_1:reviews:limit:20:offset:0")

	mock.ExpectQuery("INSERT INTO product_review_stats").
		WithArgs("prod_1").
		WillReturnRows(sqlmock.NewRows(statsColumns).AddRow("prod_1", 4.5, 2, 0, 0, 0, 1, 1, now, now))

	err := calculator.CalculateAndUpdate(context.Background(), "prod_1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.True(t, mr.Exists("product:prod_1:review_stats"))
	assert.False(t, mr.Exists("product:prod_1:reviews:limit:20:offset:0"))
}

func TestCalculator_CalculateAndUpdate_DatabaseError(t *testing.T) {
	calculator, mock, mr := setupCalculator(t)

	mock.ExpectQuery("INSERT INTO product_review_stats").
		WithArgs("prod_1").
		WillReturnError(errors.New("connection reset"))

	err := calculator.CalculateAndUpdate(context.Background(), "prod_1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "prod_1")
	assert.False(t, mr.Exists("product:prod_1:review_stats"))
}

func TestCalculator_CalculateAndUpdate_CacheDownIsNotFatal(t *testing.T) {
	calculator, mock, mr := setupCalculator(t)
	now := time.Now()
	mr.Close()

	mock.ExpectQuery("INSERT INTO product_review_stats").
		WillReturnRows(sqlmock.NewRows(statsColumns).AddRow("prod_1", 0.0, 0, 0, 0, 0, 0, 0, now, now))

	assert.NoError(t, calculator.CalculateAndUpdate(context.Background(), "prod_1"))
}

func TestCalculator_CalculateAndUpdate_ContextTimeout(t *testing.T) {
	calculator, mock, _ := setupCalculator(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	mock.ExpectQuery("INSERT INTO product_review_stats").
		WillDelayFor(100 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows(statsColumns))

	time.Sleep(10 * time.Millisecond)

	err := calculator.CalculateAndUpdate(ctx, "prod_1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}
