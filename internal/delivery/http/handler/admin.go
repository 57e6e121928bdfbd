package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/delivery/http/request"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/usecase/review"
)

const reviewNotFound = "Review not found"

// AdminReviewHandler serves review moderation endpoints
type AdminReviewHandler struct {
	service *review.Service
	logger  *logger.Logger
}

// NewAdminReviewHandler creates a new admin review handler
func NewAdminReviewHandler(service *review.Service, log *logger.Logger) *AdminReviewHandler {
	return &AdminReviewHandler{
		service: service,
		logger:  log,
	}
}

// UpdateReviewRequest represents the request body for editing a review; omitted fields are kept
type UpdateReviewRequest struct {
	Title   *string              `json:"title"`
	Content *string              `json:"content"`
	Rating  *int                 `json:"rating"`
	Images  *[]review.ImageInput `json:"images"`
}

// UpdateStatusRequest represents the request body for moderating a review
type UpdateStatusRequest struct {
	Status string `json:"status" example:"approved"`
}

// UpdateVerifiedRequest represents the request body for (un)verifying a review
type UpdateVerifiedRequest struct {
	Verified *bool `json:"verified"`
}

// ResponseRequest represents the request body for a store reply
type ResponseRequest struct {
	Content string `json:"content"`
}

// List handles GET /admin/product-reviews
// @Summary List reviews
// @Description Search and filter reviews of every status. Image keys are returned as absolute URLs.
// @Tags Admin
// @Produce json
// @Param q query string false "Matches content, name or email"
// @Param id query string false "Review IDs, comma separated"
// @Param status query string false "Statuses, comma separated"
// @Param product_id query string false "Product IDs, comma separated"
// @Param order_id query string false "Order IDs, comma separated"
// @Param rating query string false "Ratings, comma separated"
// @Param created_at_gte query string false "Created at or after"
// @Param created_at_lte query string false "Created at or before"
// @Param limit query int false "Number of items per page (max 100)" default(50)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "{product_reviews, count, offset, limit}"
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/product-reviews [get]
func (h *AdminReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseReviewFilter(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Limit, filter.Offset = request.GetPaginationParams(r, 50)

	reviews, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleError(w, h.logger, reviewNotFound, err)
		return
	}

	h.service.PrefixMediaURLs(reviews...)
	response.Paginated(w, "product_reviews", reviews, total, filter.Limit, filter.Offset)
}

// GetByID handles GET /admin/product-reviews/{id}
// @Summary Get a review
// @Tags Admin
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Success 200 {object} map[string]interface{} "{product_review}"
// @Failure 400 {object} map[string]string "Invalid review ID"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/product-reviews/{id} [get]
func (h *AdminReviewHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	result, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, reviewNotFound, err)
		return
	}

	h.writeReview(w, result)
}

// Update handles PUT /admin/product-reviews/{id}
// @Summary Edit a review
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Param review body UpdateReviewRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "{product_review}"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/product-reviews/{id} [put]
func (h *AdminReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req UpdateReviewRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Update(r.Context(), id, review.ReviewPatch{
		Title:   req.Title,
		Content: req.Content,
		Rating:  req.Rating,
		Images:  req.Images,
	})
	if err != nil {
		handleError(w, h.logger, reviewNotFound, err)
		return
	}

	h.writeReview(w, result)
}

// Delete handles DELETE /admin/product-reviews/{id}
// @Summary Delete a review
// @Description Soft delete a review together with its images and response
// @Tags Admin
// @Param id path string true "Review ID (UUID)"
// @Success 204 "Review deleted successfully"
// @Failure 400 {object} map[string]string "Invalid review ID"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/product-reviews/{id} [delete]
func (h *AdminReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleError(w, h.logger, reviewNotFound, err)
		return
	}

	response.NoContent(w)
}

// UpdateStatus handles PUT /admin/product-reviews/{id}/status
// @Summary Moderate a review
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Param status body UpdateStatusRequest true "pending, approved or flagged"
// @Success 200 {object} map[string]interface{} "{product_review}"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/product-reviews/{id}/status [put]
func (h *AdminReviewHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req UpdateStatusRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid status")
		return
	}

	result, err := h.service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		handleError(w, h.logger, reviewNotFound, err)
		return
	}

	h.writeReview(w, result)
}

// UpdateVerified handles PUT /admin/product-reviews/{id}/verified
// @Summary Mark a review verified or unverified
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Param verified body UpdateVerifiedRequest true "Verification flag"
// @Success 200 {object} map[string]interface{} "{product_review}"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/product-reviews/{id}/verified [put]
func (h *AdminReviewHandler) UpdateVerified(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req UpdateVerifiedRequest
	if err := request.DecodeJSON(r, &req); err != nil || req.Verified == nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.UpdateVerified(r.Context(), id, *req.Verified)
	if err != nil {
		handleError(w, h.logger, reviewNotFound, err)
		return
	}

	h.writeReview(w, result)
}

// CreateResponse handles POST /admin/product-reviews/{id}/response
// @Summary Reply to a review
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Param response body ResponseRequest true "Reply"
// @Success 201 {object} map[string]interface{} "{product_review_response}"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 409 {object} map[string]string "Review already has a response"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/product-reviews/{id}/response [post]
func (h *AdminReviewHandler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeResponse(w, r)
	if !ok {
		return
	}

	result, err := h.service.CreateResponse(r.Context(), id, req.Content)
	if err != nil {
		handleError(w, h.logger, reviewNotFound, err)
		return
	}

	response.Object(w, http.StatusCreated, "product_review_response", result)
}

// UpdateResponse handles PUT /admin/product-reviews/{id}/response
// @Summary Edit the reply to a review
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Param response body ResponseRequest true "Reply"
// @Success 200 {object} map[string]interface{} "{product_review_response}"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Review or response not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/product-reviews/{id}/response [put]
func (h *AdminReviewHandler) UpdateResponse(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeResponse(w, r)
	if !ok {
		return
	}

	result, err := h.service.UpdateResponse(r.Context(), id, req.Content)
	if err != nil {
		handleError(w, h.logger, "Review or response not found", err)
		return
	}

	response.Object(w, http.StatusOK, "product_review_response", result)
}

// DeleteResponse handles DELETE /admin/product-reviews/{id}/response
// @Summary Remove the reply to a review
// @Tags Admin
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Success 200 {object} map[string]interface{} "{product_review}"
// @Failure 400 {object} map[string]string "Invalid review ID"
// @Failure 404 {object} map[string]string "Review or response not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/product-reviews/{id}/response [delete]
func (h *AdminReviewHandler) DeleteResponse(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	result, err := h.service.DeleteResponse(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, "Review or response not found", err)
		return
	}

	h.writeReview(w, result)
}

func (h *AdminReviewHandler) decodeResponse(w http.ResponseWriter, r *http.Request) (uuid.UUID, ResponseRequest, bool) {
	var req ResponseRequest

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return uuid.Nil, req, false
	}

	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return uuid.Nil, req, false
	}

	return id, req, true
}

func (h *AdminReviewHandler) writeReview(w http.ResponseWriter, result *domain.Review) {
	h.service.PrefixMediaURLs(result)
	response.Object(w, http.StatusOK, "product_review", result)
}
