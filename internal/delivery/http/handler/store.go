package handler

import (
	"net/http"

	"github.com/Pesokrava/product_reviews/internal/delivery/http/request"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/usecase/review"
)

// StoreHandler serves the storefront review endpoints
type StoreHandler struct {
	service *review.Service
	logger  *logger.Logger
}

// NewStoreHandler creates a new storefront review handler
func NewStoreHandler(service *review.Service, log *logger.Logger) *StoreHandler {
	return &StoreHandler{
		service: service,
		logger:  log,
	}
}

// RandomReviewsResponse is a random, image-balanced sample of reviews
type RandomReviewsResponse struct {
	Reviews                         []*domain.Review    `json:"reviews"`
	TotalAvailable                  int                 `json:"totalAvailable"`
	TotalWithImageMediaAvailable    int                 `json:"totalWithImageMediaAvailable"`
	TotalWithoutImageMediaAvailable int                 `json:"totalWithoutImageMediaAvailable"`
	WithImagesRequested             int                 `json:"withImagesRequested"`
	TotalRequested                  int                 `json:"totalRequested"`
	Returned                        int                 `json:"returned"`
	SelectedWithImageMedia          int                 `json:"selectedWithImageMedia"`
	SelectedWithoutImageMedia       int                 `json:"selectedWithoutImageMedia"`
	Status                          domain.ReviewStatus `json:"status"`
}

// EmptyRandomReviewsResponse is returned when no review matches the filters
type EmptyRandomReviewsResponse struct {
	Reviews             []*domain.Review `json:"reviews"`
	TotalAvailable      int              `json:"totalAvailable"`
	WithImagesRequested int              `json:"withImagesRequested"`
	TotalRequested      int              `json:"totalRequested"`
	Message             string           `json:"message"`
}

// OrderReviewsRequest is a batch of reviews for the line items of an order
type OrderReviewsRequest struct {
	Reviews []OrderReviewRequest `json:"reviews"`
}

// OrderReviewRequest is a single review inside OrderReviewsRequest
type OrderReviewRequest struct {
	ProductID       string              `json:"product_id"`
	VariantID       string              `json:"variant_id"`
	OrderID         string              `json:"order_id"`
	OrderLineItemID string              `json:"order_line_item_id"`
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	Title           string              `json:"title"`
	Rating          int                 `json:"rating"`
	Content         string              `json:"content"`
	Images          []review.ImageInput `json:"images"`
}

// AnonymousReviewRequest is a review left for a product without an order
type AnonymousReviewRequest struct {
	Title    string       `json:"title"`
	FullName string       `json:"full_name"`
	Email    string       `json:"email"`
	Rating   int          `json:"rating"`
	Content  string       `json:"content"`
	Media    []MediaInput `json:"media"`
}

// MediaInput is an uploaded file referenced by its storage key
type MediaInput struct {
	Key  string `json:"key"`
	Type string `json:"type"`
}

// Random handles GET /store/product-reviews/random
// @Summary Random reviews
// @Description Returns a shuffled sample of reviews that prefers reviews with image media. Image selections are never dropped, so the result can exceed total when withImages > total.
// @Tags Store
// @Produce json
// @Param withImages query int false "Reviews with image media to include (0-10)" default(3)
// @Param total query int false "Target sample size (1-20)" default(6)
// @Param status query string false "Moderation status" default(approved)
// @Param product_id query string false "Product ID"
// @Param order_id query string false "Order ID"
// @Param rating query int false "Rating"
// @Param created_at_gte query string false "Created at or after (RFC 3339 or YYYY-MM-DD)"
// @Param created_at_lte query string false "Created at or before (RFC 3339 or YYYY-MM-DD)"
// @Success 200 {object} RandomReviewsResponse "Sample; EmptyRandomReviewsResponse when nothing matches"
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /store/product-reviews/random [get]
func (h *StoreHandler) Random(w http.ResponseWriter, r *http.Request) {
	filter, err := parseReviewFilter(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var status domain.ReviewStatus
	if len(filter.Statuses) > 1 {
		response.Error(w, http.StatusBadRequest, "Only one status may be sampled")
		return
	}
	if len(filter.Statuses) == 1 {
		status = filter.Statuses[0]
	}

	result, err := h.service.Random(r.Context(), review.RandomRequest{
		Filter:     filter,
		Status:     status,
		WithImages: request.GetOptionalIntQuery(r, "withImages"),
		Total:      request.GetOptionalIntQuery(r, "total"),
	})
	if err != nil {
		handleError(w, h.logger, "Reviews not found", err)
		return
	}

	if result.TotalAvailable == 0 {
		response.JSON(w, http.StatusOK, EmptyRandomReviewsResponse{
			Reviews:             result.Reviews,
			TotalAvailable:      0,
			WithImagesRequested: result.WithImagesRequested,
			TotalRequested:      result.TotalRequested,
			Message:             "No reviews found with status: " + string(result.Status),
		})
		return
	}

	response.JSON(w, http.StatusOK, RandomReviewsResponse{
		Reviews:                         result.Reviews,
		TotalAvailable:                  result.TotalAvailable,
		TotalWithImageMediaAvailable:    result.WithImagesAvailable,
		TotalWithoutImageMediaAvailable: result.WithoutImagesAvailable,
		WithImagesRequested:             result.WithImagesRequested,
		TotalRequested:                  result.TotalRequested,
		Returned:                        len(result.Reviews),
		SelectedWithImageMedia:          result.SelectedWithImages,
		SelectedWithoutImageMedia:       result.SelectedWithoutImages,
		Status:                          result.Status,
	})
}

// List handles GET /store/product-reviews
// @Summary List reviews
// @Description List reviews for the storefront. Only approved reviews are returned unless status is given.
// @Tags Store
// @Produce json
// @Param product_id query string false "Product ID"
// @Param status query string false "Moderation status" default(approved)
// @Param limit query int false "Number of items per page (max 100)" default(50)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "{product_reviews, count, offset, limit}"
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /store/product-reviews [get]
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseReviewFilter(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(filter.Statuses) == 0 {
		filter.Statuses = []domain.ReviewStatus{domain.StatusApproved}
	}
	filter.Limit, filter.Offset = request.GetPaginationParams(r, 50)

	reviews, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleError(w, h.logger, "Reviews not found", err)
		return
	}

	response.Paginated(w, "product_reviews", reviews, total, filter.Limit, filter.Offset)
}

// CreateForOrder handles POST /store/product-reviews
// @Summary Review order line items
// @Description Create pending reviews for the line items of an order. Fails with DUPLICATE_REVIEW when a line item was already reviewed.
// @Tags Store
// @Accept json
// @Produce json
// @Param reviews body OrderReviewsRequest true "Reviews"
// @Success 201 {object} map[string]interface{} "{product_reviews}"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 409 {object} DuplicateReviewResponse "Line item already reviewed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /store/product-reviews [post]
func (h *StoreHandler) CreateForOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderReviewsRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := make([]review.OrderItemInput, 0, len(req.Reviews))
	for _, item := range req.Reviews {
		items = append(items, review.OrderItemInput{
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			OrderID:         item.OrderID,
			OrderLineItemID: item.OrderLineItemID,
			Name:            item.Name,
			Email:           item.Email,
			Title:           item.Title,
			Rating:          item.Rating,
			Content:         item.Content,
			Images:          item.Images,
		})
	}

	reviews, err := h.service.CreateForOrder(r.Context(), items)
	if err != nil {
		handleError(w, h.logger, "Review not found", err)
		return
	}

	response.Object(w, http.StatusCreated, "product_reviews", reviews)
}

// GetByProduct handles GET /store/product-review/{product_id}
// @Summary Approved reviews of a product
// @Description Approved reviews of a product, newest first. Results are cached.
// @Tags Store
// @Produce json
// @Param product_id path string true "Product ID"
// @Param limit query int false "Number of items per page (max 100)" default(50)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "{reviews, count}"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /store/product-review/{product_id} [get]
func (h *StoreHandler) GetByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetStringParam(r, "product_id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	limit, offset := request.GetPaginationParams(r, 50)

	reviews, total, err := h.service.ListByProduct(r.Context(), productID, limit, offset)
	if err != nil {
		handleError(w, h.logger, "Reviews not found", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"reviews": reviews,
		"count":   total,
	})
}

// Upsert handles POST /store/product-review/{product_id}
// @Summary Submit a review for a product
// @Description Creates an anonymous review, or rewrites the one the same email already left for the product. The review goes back to pending moderation.
// @Tags Store
// @Accept json
// @Produce json
// @Param product_id path string true "Product ID"
// @Param review body AnonymousReviewRequest true "Review"
// @Success 201 {object} map[string]interface{} "{review, message}"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /store/product-review/{product_id} [post]
func (h *StoreHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetStringParam(r, "product_id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "product_id is required")
		return
	}

	var req AnonymousReviewRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	media := make([]review.ImageInput, 0, len(req.Media))
	for _, m := range req.Media {
		media = append(media, review.ImageInput{URL: m.Key, Type: m.Type})
	}

	result, created, err := h.service.Upsert(r.Context(), review.UpsertInput{
		ProductID: productID,
		Title:     req.Title,
		FullName:  req.FullName,
		Email:     req.Email,
		Rating:    req.Rating,
		Content:   req.Content,
		Media:     media,
	})
	if err != nil {
		handleError(w, h.logger, "Review not found", err)
		return
	}

	message := "Review updated successfully"
	if created {
		message = "Review submitted successfully and is pending approval"
	}

	response.JSON(w, http.StatusCreated, map[string]any{
		"review":  result,
		"message": message,
	})
}
