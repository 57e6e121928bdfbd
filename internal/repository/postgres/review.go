package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

const reviewColumns = `id, product_id, variant_id, order_id, order_line_item_id, name, email, title, content,
	rating, status, verified, created_at, updated_at, deleted_at`

// ReviewRepository implements domain.ReviewRepository for PostgreSQL
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new PostgreSQL review repository
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review and its images in one transaction
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return r.CreateBatch(ctx, []*domain.Review{review})
}

// CreateBatch inserts reviews and their images in one transaction. Nothing is
// stored when any insert fails.
func (r *ReviewRepository) CreateBatch(ctx context.Context, reviews []*domain.Review) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, review := range reviews {
		if err := insertReview(ctx, tx, review); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertReview(ctx context.Context, tx *sqlx.Tx, review *domain.Review) error {
	query := `
		INSERT INTO product_reviews (product_id, variant_id, order_id, order_line_item_id, name, email,
			title, content, rating, status, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRowxContext(
		ctx,
		query,
		review.ProductID,
		review.VariantID,
		review.OrderID,
		review.OrderLineItemID,
		review.Name,
		review.Email,
		review.Title,
		review.Content,
		review.Rating,
		review.Status,
		review.Verified,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return mapReviewInsertError(err, review)
	}

	return insertImages(ctx, tx, review.ID, review.Images)
}

// mapReviewInsertError reports a violated order line item uniqueness as a duplicate review
func mapReviewInsertError(err error, review *domain.Review) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && review.OrderLineItemID != nil {
		return &domain.DuplicateReviewError{OrderLineItemID: *review.OrderLineItemID}
	}
	return err
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM product_reviews WHERE id = $1 AND deleted_at IS NULL`

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.attach(ctx, []*domain.Review{&review}); err != nil {
		return nil, err
	}

	return &review, nil
}

// List retrieves reviews matching the filter, newest first
func (r *ReviewRepository) List(ctx context.Context, filter domain.ReviewFilter) ([]*domain.Review, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + reviewColumns + ` FROM product_reviews WHERE ` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, max(filter.Offset, 0))
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to expand filter: %w", err)
	}

	reviews := []*domain.Review{}
	if err := r.db.SelectContext(ctx, &reviews, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	if err := r.attach(ctx, reviews); err != nil {
		return nil, err
	}

	return reviews, nil
}

// Count returns the number of reviews matching the filter
func (r *ReviewRepository) Count(ctx context.Context, filter domain.ReviewFilter) (int, error) {
	where, args := buildWhere(filter)
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM product_reviews WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to expand filter: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return 0, err
	}

	return count, nil
}

// FindByProductAndEmail returns the most recent review a customer left for a product
func (r *ReviewRepository) FindByProductAndEmail(ctx context.Context, productID, email string) (*domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM product_reviews
		WHERE product_id = $1 AND LOWER(email) = LOWER($2) AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, productID, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.attach(ctx, []*domain.Review{&review}); err != nil {
		return nil, err
	}

	return &review, nil
}

// ExistsForOrderLineItem reports whether a live review exists for the order line item
func (r *ReviewRepository) ExistsForOrderLineItem(ctx context.Context, orderID, orderLineItemID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM product_reviews
			WHERE order_id = $1 AND order_line_item_id = $2 AND deleted_at IS NULL
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, orderID, orderLineItemID); err != nil {
		return false, err
	}

	return exists, nil
}

// Update rewrites the editable fields of a review and replaces its images
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE product_reviews
		SET name = $1, email = $2, title = $3, content = $4, rating = $5, status = $6, verified = $7,
			updated_at = NOW()
		WHERE id = $8 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err = tx.QueryRowxContext(
		ctx,
		query,
		review.Name,
		review.Email,
		review.Title,
		review.Content,
		review.Rating,
		review.Status,
		review.Verified,
		review.ID,
	).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	softDelete := `UPDATE product_review_images SET deleted_at = NOW() WHERE product_review_id = $1 AND deleted_at IS NULL`
	if _, err := tx.ExecContext(ctx, softDelete, review.ID); err != nil {
		return fmt.Errorf("failed to clear images: %w", err)
	}

	if err := insertImages(ctx, tx, review.ID, review.Images); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateStatus changes the moderation status of a review
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) error {
	query := `UPDATE product_reviews SET status = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`
	return r.execOne(ctx, query, status, id)
}

// UpdateVerified changes the verification flag of a review
func (r *ReviewRepository) UpdateVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	query := `UPDATE product_reviews SET verified = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`
	return r.execOne(ctx, query, verified, id)
}

// Delete soft-deletes a review together with its images and response
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE product_reviews SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
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

	for _, table := range []string{"product_review_images", "product_review_responses"} {
		query := `UPDATE ` + table + ` SET deleted_at = NOW() WHERE product_review_id = $1 AND deleted_at IS NULL`
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to cascade delete to %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// ListProductIDs returns every product that has at least one live review
func (r *ReviewRepository) ListProductIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT product_id FROM product_reviews WHERE deleted_at IS NULL ORDER BY product_id`

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *ReviewRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
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

// attach loads images and responses for a page of reviews with one query each
func (r *ReviewRepository) attach(ctx context.Context, reviews []*domain.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	ids := make([]string, len(reviews))
	byID := make(map[uuid.UUID]*domain.Review, len(reviews))
	for i, review := range reviews {
		ids[i] = review.ID.String()
		review.Images = []domain.ReviewImage{}
		byID[review.ID] = review
	}

	var images []domain.ReviewImage
	imagesQuery := `
		SELECT id, product_review_id, url, type, created_at, updated_at, deleted_at
		FROM product_review_images
		WHERE product_review_id = ANY($1) AND deleted_at IS NULL
		ORDER BY created_at, id
	`
	if err := r.db.SelectContext(ctx, &images, imagesQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to load review images: %w", err)
	}
	for _, img := range images {
		if review, ok := byID[img.ReviewID]; ok {
			review.Images = append(review.Images, img)
		}
	}

	var responses []domain.ReviewResponse
	responsesQuery := `
		SELECT id, product_review_id, content, created_at, updated_at, deleted_at
		FROM product_review_responses
		WHERE product_review_id = ANY($1) AND deleted_at IS NULL
	`
	if err := r.db.SelectContext(ctx, &responses, responsesQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to load review responses: %w", err)
	}
	for i := range responses {
		if review, ok := byID[responses[i].ReviewID]; ok {
			review.Response = &responses[i]
		}
	}

	return nil
}

func insertImages(ctx context.Context, tx *sqlx.Tx, reviewID uuid.UUID, images []domain.ReviewImage) error {
	query := `
		INSERT INTO product_review_images (product_review_id, url, type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	for i := range images {
		img := &images[i]
		img.ReviewID = reviewID
		err := tx.QueryRowxContext(ctx, query, reviewID, img.URL, img.Type).
			Scan(&img.ID, &img.CreatedAt, &img.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert review image: %w", err)
		}
	}

	return nil
}

// buildWhere renders the filter with ? placeholders for sqlx.In
func buildWhere(f domain.ReviewFilter) (string, []any) {
	conds := []string{"deleted_at IS NULL"}
	var args []any

	if len(f.IDs) > 0 {
		ids := make([]string, len(f.IDs))
		for i, id := range f.IDs {
			ids[i] = id.String()
		}
		conds = append(conds, "id IN (?)")
		args = append(args, ids)
	}
	if len(f.ProductIDs) > 0 {
		conds = append(conds, "product_id IN (?)")
		args = append(args, f.ProductIDs)
	}
	if len(f.OrderIDs) > 0 {
		conds = append(conds, "order_id IN (?)")
		args = append(args, f.OrderIDs)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, "status IN (?)")
		args = append(args, statuses)
	}
	if len(f.Ratings) > 0 {
		conds = append(conds, "rating IN (?)")
		args = append(args, f.Ratings)
	}
	if f.CreatedFrom != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, *f.CreatedTo)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + q + "%"
		conds = append(conds, "(content ILIKE ? OR name ILIKE ? OR email ILIKE ?)")
		args = append(args, like, like, like)
	}

	return strings.Join(conds, " AND "), args
}
