package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Pesokrava/product_reviews/internal/delivery/http/request"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/usecase/stats"
)

// StatsHandler serves the review stats endpoints
type StatsHandler struct {
	service *stats.Service
	logger  *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *stats.Service, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  log,
	}
}

// RefreshStatsRequest selects the products to recompute; empty means every reviewed product
type RefreshStatsRequest struct {
	ProductIDs []string `json:"product_ids"`
}

// RefreshStatsResponse reports a stats refresh
type RefreshStatsResponse struct {
	Message    string   `json:"message"`
	Refreshed  int      `json:"refreshed"`
	ProductIDs []string `json:"product_ids,omitempty"`
}

// Get handles GET /store/product-review-stats/{product_id}
// @Summary Review stats of a product
// @Description Average rating and rating distribution over approved reviews. Results are cached.
// @Tags Store
// @Produce json
// @Param product_id path string true "Product ID"
// @Success 200 {object} map[string]interface{} "{product_review_stats}"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "No stats for the product"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /store/product-review-stats/{product_id} [get]
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetStringParam(r, "product_id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	result, err := h.service.Get(r.Context(), productID)
	if err != nil {
		handleError(w, h.logger, "Review stats not found", err)
		return
	}

	response.Object(w, http.StatusOK, "product_review_stats", result)
}

// List handles GET /admin/product-review-stats
// @Summary List review stats
// @Tags Admin
// @Produce json
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "{product_review_stats, count, offset, limit}"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/product-review-stats [get]
func (h *StatsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := request.GetPaginationParams(r, 20)

	result, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		handleError(w, h.logger, "Review stats not found", err)
		return
	}

	response.Paginated(w, "product_review_stats", result, total, limit, offset)
}

// Refresh handles POST /admin/product-review-stats
// @Summary Recompute review stats
// @Description Recompute the stats of the given products, or of every product with reviews when none are given
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body RefreshStatsRequest false "Products to refresh"
// @Success 200 {object} RefreshStatsResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/product-review-stats [post]
func (h *StatsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshStatsRequest
	if err := request.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ids, err := h.service.Refresh(r.Context(), req.ProductIDs)
	if err != nil {
		handleError(w, h.logger, "Review stats not found", err)
		return
	}

	if len(ids) == 0 {
		response.JSON(w, http.StatusOK, RefreshStatsResponse{
			Message:   "No products with reviews found",
			Refreshed: 0,
		})
		return
	}

	response.JSON(w, http.StatusOK, RefreshStatsResponse{
		Message:    fmt.Sprintf("Successfully refreshed review stats for %d products", len(ids)),
		Refreshed:  len(ids),
		ProductIDs: ids,
	})
}
