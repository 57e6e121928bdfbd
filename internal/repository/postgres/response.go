package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// ResponseRepository implements domain.ReviewResponseRepository for PostgreSQL
type ResponseRepository struct {
	db *sqlx.DB
}

// NewResponseRepository creates a new PostgreSQL review response repository
func NewResponseRepository(db *sqlx.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Create attaches a response to a review. A review holds at most one live response.
func (r *ResponseRepository) Create(ctx context.Context, response *domain.ReviewResponse) error {
	query := `
		INSERT INTO product_review_responses (product_review_id, content)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, response.ReviewID, response.Content).
		Scan(&response.ID, &response.CreatedAt, &response.UpdatedAt)
	if err != nil {
		return mapPQError(err)
	}

	return nil
}

// GetByReviewID retrieves the live response of a review
func (r *ResponseRepository) GetByReviewID(ctx context.Context, reviewID uuid.UUID) (*domain.ReviewResponse, error) {
	query := `
		SELECT id, product_review_id, content, created_at, updated_at, deleted_at
		FROM product_review_responses
		WHERE product_review_id = $1 AND deleted_at IS NULL
	`

	var response domain.ReviewResponse
	if err := r.db.GetContext(ctx, &response, query, reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &response, nil
}

// Update replaces the content of the live response of a review
func (r *ResponseRepository) Update(ctx context.Context, response *domain.ReviewResponse) error {
	query := `
		UPDATE product_review_responses
		SET content = $1, updated_at = NOW()
		WHERE product_review_id = $2 AND deleted_at IS NULL
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, response.Content, response.ReviewID).
		Scan(&response.ID, &response.CreatedAt, &response.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	return nil
}

// Delete soft-deletes the response of a review
func (r *ResponseRepository) Delete(ctx context.Context, reviewID uuid.UUID) error {
	query := `UPDATE product_review_responses SET deleted_at = NOW() WHERE product_review_id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, reviewID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// mapPQError turns constraint violations into domain errors
func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return domain.ErrAlreadyExists
		case pqForeignKeyViolation:
			return domain.ErrNotFound
		}
	}
	return err
}
