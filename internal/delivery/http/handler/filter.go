package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/delivery/http/request"
	"github.com/Pesokrava/product_reviews/internal/domain"
)

// parseReviewFilter reads the review list filters shared by the admin and store endpoints.
// Pagination is left to the caller.
func parseReviewFilter(r *http.Request) (domain.ReviewFilter, error) {
	filter := domain.ReviewFilter{
		ProductIDs: request.GetListQuery(r, "product_id"),
		OrderIDs:   request.GetListQuery(r, "order_id"),
		Query:      r.URL.Query().Get("q"),
	}

	for _, raw := range request.GetListQuery(r, "id") {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid id %q", raw)
		}
		filter.IDs = append(filter.IDs, id)
	}

	for _, raw := range request.GetListQuery(r, "status") {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	for _, raw := range request.GetListQuery(r, "rating") {
		rating, err := strconv.Atoi(raw)
		if err != nil || rating < 1 || rating > 5 {
			return filter, fmt.Errorf("invalid rating %q", raw)
		}
		filter.Ratings = append(filter.Ratings, rating)
	}

	var err error
	if filter.CreatedFrom, err = request.GetTimeQuery(r, "created_at_gte"); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = request.GetTimeQuery(r, "created_at_lte"); err != nil {
		return filter, err
	}

	return filter, nil
}
