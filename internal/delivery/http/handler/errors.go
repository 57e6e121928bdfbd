package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Pesokrava/product_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

// DuplicateReviewResponse is the 409 body returned when an order line item was already reviewed
type DuplicateReviewResponse struct {
	Error           string `json:"error" example:"DUPLICATE_REVIEW"`
	Message         string `json:"message"`
	OrderLineItemID string `json:"order_line_item_id"`
}

// handleError maps service layer errors to HTTP responses
func handleError(w http.ResponseWriter, log *logger.Logger, notFound string, err error) {
	var dup *domain.DuplicateReviewError

	switch {
	case errors.As(err, &dup):
		response.JSON(w, http.StatusConflict, DuplicateReviewResponse{
			Error:           "DUPLICATE_REVIEW",
			Message:         "You have already submitted a review for this item",
			OrderLineItemID: dup.OrderLineItemID,
		})
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrAlreadyExists):
		response.Error(w, http.StatusConflict, "Resource already exists")
	case errors.Is(err, domain.ErrConflict):
		response.Error(w, http.StatusConflict, "Conflict")
	case errors.Is(err, domain.ErrInvalidInput):
		msg := "Invalid input"
		if detail, ok := strings.CutPrefix(err.Error(), domain.ErrInvalidInput.Error()+": "); ok {
			msg += ": " + detail
		}
		response.Error(w, http.StatusBadRequest, msg)
	default:
		log.Error("Internal error in HTTP handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
