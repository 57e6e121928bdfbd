package review

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/delivery/events"
	"github.com/Pesokrava/product_reviews/internal/domain"
)

// CreateResponse attaches a store reply to a review
func (s *Service) CreateResponse(ctx context.Context, reviewID uuid.UUID, content string) (*domain.ReviewResponse, error) {
	response := &domain.ReviewResponse{ReviewID: reviewID, Content: strings.TrimSpace(content)}
	if err := s.validate.Struct(response); err != nil {
		return nil, invalid(err)
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Response != nil {
		return nil, domain.ErrAlreadyExists
	}

	if err := s.responses.Create(ctx, response); err != nil {
		s.logger.Error("Failed to create review response", err)
		return nil, err
	}

	review.Response = response
	s.afterWrite(ctx, events.ReviewResponseChanged, review)

	return response, nil
}

// UpdateResponse replaces the content of a review's reply
func (s *Service) UpdateResponse(ctx context.Context, reviewID uuid.UUID, content string) (*domain.ReviewResponse, error) {
	response := &domain.ReviewResponse{ReviewID: reviewID, Content: strings.TrimSpace(content)}
	if err := s.validate.Struct(response); err != nil {
		return nil, invalid(err)
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if err := s.responses.Update(ctx, response); err != nil {
		s.logger.Error("Failed to update review response", err)
		return nil, err
	}

	review.Response = response
	s.afterWrite(ctx, events.ReviewResponseChanged, review)

	return response, nil
}

// DeleteResponse removes a review's reply and returns the review without it
func (s *Service) DeleteResponse(ctx context.Context, reviewID uuid.UUID) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if err := s.responses.Delete(ctx, reviewID); err != nil {
		s.logger.Error("Failed to delete review response", err)
		return nil, err
	}

	review.Response = nil
	s.afterWrite(ctx, events.ReviewResponseChanged, review)

	return review, nil
}
