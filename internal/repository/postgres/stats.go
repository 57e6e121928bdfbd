package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

const statsColumns = `product_id, average_rating, review_count, rating_count_1, rating_count_2, rating_count_3,
	rating_count_4, rating_count_5, created_at, updated_at`

// StatsRepository implements domain.StatsRepository for PostgreSQL
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new PostgreSQL stats repository
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Refresh recomputes the stats row of a product from its approved reviews.
// A product without approved reviews ends up with zero counts.
func (r *StatsRepository) Refresh(ctx context.Context, productID string) (*domain.ReviewStats, error) {
	query := `
		INSERT INTO product_review_stats (product_id, average_rating, review_count,
			rating_count_1, rating_count_2, rating_count_3, rating_count_4, rating_count_5)
		SELECT
			$1::text,
			COALESCE(ROUND(AVG(rating)::numeric, 1), 0),
			COUNT(*),
			COUNT(*) FILTER (WHERE rating = 1),
			COUNT(*) FILTER (WHERE rating = 2),
			COUNT(*) FILTER (WHERE rating = 3),
			COUNT(*) FILTER (WHERE rating = 4),
			COUNT(*) FILTER (WHERE rating = 5)
		FROM product_reviews
		WHERE product_id = $1 AND status = 'approved' AND deleted_at IS NULL
		ON CONFLICT (product_id) DO UPDATE SET
			average_rating = EXCLUDED.average_rating,
			review_count = EXCLUDED.review_count,
			rating_count_1 = EXCLUDED.rating_count_1,
			rating_count_2 = EXCLUDED.rating_count_2,
			rating_count_3 = EXCLUDED.rating_count_3,
			rating_count_4 = EXCLUDED.rating_count_4,
			rating_count_5 = EXCLUDED.rating_count_5,
			updated_at = NOW()
		RETURNING ` + statsColumns

	var stats domain.ReviewStats
	if err := r.db.GetContext(ctx, &stats, query, productID); err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetByProductID retrieves the stats of a product
func (r *StatsRepository) GetByProductID(ctx context.Context, productID string) (*domain.ReviewStats, error) {
	query := `SELECT ` + statsColumns + ` FROM product_review_stats WHERE product_id = $1`

	var stats domain.ReviewStats
	if err := r.db.GetContext(ctx, &stats, query, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &stats, nil
}

// List retrieves stats rows, most recently updated first
func (r *StatsRepository) List(ctx context.Context, limit, offset int) ([]*domain.ReviewStats, error) {
	query := `
		SELECT ` + statsColumns + `
		FROM product_review_stats
		ORDER BY updated_at DESC, product_id
		LIMIT $1 OFFSET $2
	`

	stats := []*domain.ReviewStats{}
	if err := r.db.SelectContext(ctx, &stats, query, limit, offset); err != nil {
		return nil, err
	}

	return stats, nil
}

// Count returns the number of products with a stats row
func (r *StatsRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM product_review_stats`); err != nil {
		return 0, err
	}
	return count, nil
}
