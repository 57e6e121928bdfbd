package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., concurrent modification)
	ErrConflict = errors.New("conflict occurred")

	// ErrDuplicateReview is returned when an order line item was already reviewed
	ErrDuplicateReview = errors.New("review already submitted for this item")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)

// DuplicateReviewError reports the order line item that already has a review
type DuplicateReviewError struct {
	OrderLineItemID string
}

func (e *DuplicateReviewError) Error() string {
	return fmt.Sprintf("%s: order line item %s", ErrDuplicateReview, e.OrderLineItemID)
}

func (e *DuplicateReviewError) Unwrap() error {
	return ErrDuplicateReview
}
