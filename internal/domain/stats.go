package domain

import (
	"context"
	"time"
)

// ReviewStats is the per-product aggregate over approved reviews
type ReviewStats struct {
	ProductID     string    `json:"product_id" db:"product_id"`
	AverageRating float64   `json:"average_rating" db:"average_rating"`
	ReviewCount   int       `json:"review_count" db:"review_count"`
	RatingCount1  int       `json:"rating_count_1" db:"rating_count_1"`
	RatingCount2  int       `json:"rating_count_2" db:"rating_count_2"`
	RatingCount3  int       `json:"rating_count_3" db:"rating_count_3"`
	RatingCount4  int       `json:"rating_count_4" db:"rating_count_4"`
	RatingCount5  int       `json:"rating_count_5" db:"rating_count_5"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// StatsRepository defines the interface for review stats data access
type StatsRepository interface {
	// Refresh recomputes the stats of a product from its approved reviews
	Refresh(ctx context.Context, productID string) (*ReviewStats, error)

	// GetByProductID retrieves the stats of a product
	GetByProductID(ctx context.Context, productID string) (*ReviewStats, error)

	// List retrieves a paginated list of stats, most recently updated first
	List(ctx context.Context, limit, offset int) ([]*ReviewStats, error)

	// Count returns the number of products with stats
	Count(ctx context.Context) (int, error)
}
