package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the moderation state of a review
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusFlagged  ReviewStatus = "flagged"
)

// imageTypePrefix marks media that counts as an image
const imageTypePrefix = "image/"

// ParseStatus converts a raw string into a ReviewStatus
func ParseStatus(s string) (ReviewStatus, error) {
	status := ReviewStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", ErrInvalidInput
	}
	return status, nil
}

// Valid reports whether the status is one of the known states
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusFlagged:
		return true
	}
	return false
}

// Next returns the status the admin quick toggle moves to:
// approved -> pending -> flagged -> approved. Unknown values go to pending.
func (s ReviewStatus) Next() ReviewStatus {
	switch s {
	case StatusApproved:
		return StatusPending
	case StatusPending:
		return StatusFlagged
	case StatusFlagged:
		return StatusApproved
	}
	return StatusPending
}

// ReviewImage is a media attachment on a review
type ReviewImage struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ReviewID  uuid.UUID  `json:"product_review_id" db:"product_review_id"`
	URL       string     `json:"url" db:"url" validate:"required,max=2048"`
	Type      string     `json:"type" db:"type" validate:"max=255"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsImage reports whether the media type starts with "image/"
func (i ReviewImage) IsImage() bool {
	return strings.HasPrefix(i.Type, imageTypePrefix)
}

// ReviewResponse is a store reply attached to a review
type ReviewResponse struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ReviewID  uuid.UUID  `json:"product_review_id" db:"product_review_id"`
	Content   string     `json:"content" db:"content" validate:"required,min=1,max=5000"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Review represents a customer review of a product
type Review struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	ProductID       string          `json:"product_id" db:"product_id" validate:"required,max=255"`
	VariantID       *string         `json:"variant_id,omitempty" db:"variant_id"`
	OrderID         *string         `json:"order_id,omitempty" db:"order_id"`
	OrderLineItemID *string         `json:"order_line_item_id,omitempty" db:"order_line_item_id"`
	Name            *string         `json:"name,omitempty" db:"name" validate:"omitempty,max=255"`
	Email           *string         `json:"email,omitempty" db:"email" validate:"omitempty,email"`
	Title           *string         `json:"title,omitempty" db:"title" validate:"omitempty,max=255"`
	Content         *string         `json:"content,omitempty" db:"content" validate:"omitempty,max=5000"`
	Rating          int             `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	Status          ReviewStatus    `json:"status" db:"status" validate:"required,review_status"`
	Verified        bool            `json:"verified" db:"verified"`
	Images          []ReviewImage   `json:"images" db:"-" validate:"dive"`
	Response        *ReviewResponse `json:"response" db:"-"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// HasImageMedia reports whether at least one attachment is an image
func (r *Review) HasImageMedia() bool {
	for _, img := range r.Images {
		if img.IsImage() {
			return true
		}
	}
	return false
}

// ReviewFilter narrows review queries. Empty fields are ignored.
type ReviewFilter struct {
	IDs         []uuid.UUID
	ProductIDs  []string
	OrderIDs    []string
	Statuses    []ReviewStatus
	Ratings     []int
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	// Query matches content, name or email
	Query string
	// Limit of 0 returns every matching row
	Limit  int
	Offset int
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	// Create creates a new review together with its images
	Create(ctx context.Context, review *Review) error

	// CreateBatch creates reviews with their images atomically: all are stored or none
	CreateBatch(ctx context.Context, reviews []*Review) error

	// GetByID retrieves a review with images and response (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// List retrieves reviews matching the filter, newest first, with images and responses
	List(ctx context.Context, filter ReviewFilter) ([]*Review, error)

	// Count returns the number of reviews matching the filter, ignoring pagination
	Count(ctx context.Context, filter ReviewFilter) (int, error)

	// FindByProductAndEmail returns the review a customer left for a product
	FindByProductAndEmail(ctx context.Context, productID, email string) (*Review, error)

	// ExistsForOrderLineItem reports whether an order line item was already reviewed
	ExistsForOrderLineItem(ctx context.Context, orderID, orderLineItemID string) (bool, error)

	// Update updates review content, status and verification, replacing its images
	Update(ctx context.Context, review *Review) error

	// UpdateStatus changes the moderation status
	UpdateStatus(ctx context.Context, id uuid.UUID, status ReviewStatus) error

	// UpdateVerified changes the verification flag
	UpdateVerified(ctx context.Context, id uuid.UUID, verified bool) error

	// Delete soft-deletes a review and its images
	Delete(ctx context.Context, id uuid.UUID) error

	// ListProductIDs returns every distinct product that has reviews
	ListProductIDs(ctx context.Context) ([]string, error)
}

// ReviewResponseRepository defines the interface for review response data access
type ReviewResponseRepository interface {
	// Create attaches a response to a review
	Create(ctx context.Context, response *ReviewResponse) error

	// GetByReviewID retrieves the response of a review
	GetByReviewID(ctx context.Context, reviewID uuid.UUID) (*ReviewResponse, error)

	// Update replaces the response content
	Update(ctx context.Context, response *ReviewResponse) error

	// Delete soft-deletes the response of a review
	Delete(ctx context.Context, reviewID uuid.UUID) error
}
