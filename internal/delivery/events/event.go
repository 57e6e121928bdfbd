package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// EventType names a change to a review
type EventType string

const (
	ReviewCreated         EventType = "review.created"
	ReviewUpdated         EventType = "review.updated"
	ReviewStatusChanged   EventType = "review.status_changed"
	ReviewVerifiedChanged EventType = "review.verified_changed"
	ReviewDeleted         EventType = "review.deleted"
	ReviewResponseChanged EventType = "review.response_changed"
)

// AffectsStats reports whether the event can change a product's approved-review aggregate
func (t EventType) AffectsStats() bool {
	switch t {
	case ReviewCreated, ReviewUpdated, ReviewStatusChanged, ReviewDeleted:
		return true
	}
	return false
}

// ReviewEvent is the payload published on Subject
type ReviewEvent struct {
	EventType EventType           `json:"event_type"`
	Timestamp time.Time           `json:"timestamp"`
	ProductID string              `json:"product_id"`
	ReviewID  uuid.UUID           `json:"review_id"`
	Status    domain.ReviewStatus `json:"status,omitempty"`
	Review    *domain.Review      `json:"review,omitempty"`
}

// NewReviewEvent builds an event for a review change
func NewReviewEvent(eventType EventType, review *domain.Review) ReviewEvent {
	return ReviewEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		ProductID: review.ProductID,
		ReviewID:  review.ID,
		Status:    review.Status,
		Review:    review,
	}
}

// Decode parses a message body into a ReviewEvent
func Decode(data []byte) (ReviewEvent, error) {
	var event ReviewEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return ReviewEvent{}, fmt.Errorf("failed to unmarshal review event: %w", err)
	}
	if event.ProductID == "" {
		return ReviewEvent{}, fmt.Errorf("review event %q has no product_id", event.EventType)
	}
	return event, nil
}
