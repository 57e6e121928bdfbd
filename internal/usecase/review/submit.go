package review

import (
	"context"
	"errors"
	"strings"

	"github.com/Pesokrava/product_reviews/internal/delivery/events"
	"github.com/Pesokrava/product_reviews/internal/domain"
)

// ImageInput is a media attachment as submitted by a customer
type ImageInput struct {
	URL  string `json:"url" validate:"required,max=2048"`
	Type string `json:"type" validate:"max=255"`
}

// UpsertInput is an anonymous storefront submission for a product
type UpsertInput struct {
	ProductID string       `validate:"required,max=255"`
	Title     string       `validate:"required,max=255"`
	FullName  string       `validate:"required,max=255"`
	Email     string       `validate:"required,email"`
	Rating    int          `validate:"required,min=1,max=5"`
	Content   string       `validate:"required,max=5000"`
	Media     []ImageInput `validate:"dive"`
}

// OrderItemInput is one review in a batch submitted against order line items
type OrderItemInput struct {
	ProductID       string       `validate:"required,max=255"`
	VariantID       string       `validate:"max=255"`
	OrderID         string       `validate:"max=255"`
	OrderLineItemID string       `validate:"max=255"`
	Name            string       `validate:"max=255"`
	Email           string       `validate:"omitempty,email"`
	Title           string       `validate:"max=255"`
	Rating          int          `validate:"required,min=1,max=5"`
	Content         string       `validate:"max=5000"`
	Images          []ImageInput `validate:"dive"`
}

// Upsert creates a customer's review of a product, or rewrites the one they already left.
// Either way the review goes back to pending moderation. The bool reports whether a new
// review was created.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*domain.Review, bool, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		s.logger.Error("Review submission validation failed", err)
		return nil, false, invalid(err)
	}

	existing, err := s.repo.FindByProductAndEmail(ctx, in.ProductID, in.Email)
	switch {
	case err == nil:
		existing.Title = optional(in.Title)
		existing.Content = optional(in.Content)
		existing.Rating = in.Rating
		existing.Status = domain.StatusPending
		existing.Images = toImages(in.Media)

		if err := s.repo.Update(ctx, existing); err != nil {
			s.logger.Error("Failed to update existing review", err)
			return nil, false, err
		}

		s.afterWrite(ctx, events.ReviewUpdated, existing)
		s.logger.WithFields(map[string]any{
			"review_id":  existing.ID,
			"product_id": existing.ProductID,
		}).Info("Existing review resubmitted")

		return existing, false, nil

	case errors.Is(err, domain.ErrNotFound):
		review := &domain.Review{
			ProductID: in.ProductID,
			Name:      optional(in.FullName),
			Email:     optional(in.Email),
			Title:     optional(in.Title),
			Content:   optional(in.Content),
			Rating:    in.Rating,
			Status:    domain.StatusPending,
			Images:    toImages(in.Media),
		}
		if err := s.Create(ctx, review); err != nil {
			return nil, false, err
		}
		return review, true, nil

	default:
		s.logger.Error("Failed to look up existing review", err)
		return nil, false, err
	}
}

// CreateForOrder creates pending reviews for a batch of order line items in one
// transaction. Nothing is written when any line item was already reviewed; the error is
// a *domain.DuplicateReviewError. Events are only published once the batch is stored.
func (s *Service) CreateForOrder(ctx context.Context, items []OrderItemInput) ([]*domain.Review, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if err := s.validate.Struct(item); err != nil {
			s.logger.Error("Order review validation failed", err)
			return nil, invalid(err)
		}

		if item.OrderID == "" || item.OrderLineItemID == "" {
			continue
		}

		key := item.OrderID + "/" + item.OrderLineItemID
		if seen[key] {
			return nil, &domain.DuplicateReviewError{OrderLineItemID: item.OrderLineItemID}
		}
		seen[key] = true

		exists, err := s.repo.ExistsForOrderLineItem(ctx, item.OrderID, item.OrderLineItemID)
		if err != nil {
			s.logger.Error("Failed to check for existing review", err)
			return nil, err
		}
		if exists {
			s.logger.Infof("Order line item %s already reviewed", item.OrderLineItemID)
			return nil, &domain.DuplicateReviewError{OrderLineItemID: item.OrderLineItemID}
		}
	}

	reviews := make([]*domain.Review, 0, len(items))
	for _, item := range items {
		review := &domain.Review{
			ProductID:       item.ProductID,
			VariantID:       optional(item.VariantID),
			OrderID:         optional(item.OrderID),
			OrderLineItemID: optional(item.OrderLineItemID),
			Name:            optional(item.Name),
			Email:           optional(item.Email),
			Title:           optional(item.Title),
			Content:         optional(item.Content),
			Rating:          item.Rating,
			Status:          domain.StatusPending,
			Images:          toImages(item.Images),
		}
		if err := s.validate.Struct(review); err != nil {
			s.logger.Error("Review validation failed", err)
			return nil, invalid(err)
		}
		reviews = append(reviews, review)
	}

	if err := s.repo.CreateBatch(ctx, reviews); err != nil {
		s.logger.Error("Failed to create order reviews", err)
		return nil, err
	}

	for _, review := range reviews {
		s.afterWrite(ctx, events.ReviewCreated, review)
	}

	s.logger.WithFields(map[string]any{
		"order_id": items[0].OrderID,
		"count":    len(reviews),
	}).Info("Order reviews created successfully")

	return reviews, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
