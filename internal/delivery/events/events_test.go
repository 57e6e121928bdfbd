package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

func TestExponentialBackoff(t *testing.T) {
	assert.Nil(t, exponentialBackoff(1))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, exponentialBackoff(3))
	assert.Len(t, exponentialBackoff(MaxDeliveryAttempts), MaxDeliveryAttempts-1)
}

func TestEventType_AffectsStats(t *testing.T) {
	assert.True(t, ReviewCreated.AffectsStats())
	assert.True(t, ReviewStatusChanged.AffectsStats())
	assert.True(t, ReviewDeleted.AffectsStats())
	assert.False(t, ReviewVerifiedChanged.AffectsStats())
	assert.False(t, ReviewResponseChanged.AffectsStats())
}

func TestDecode(t *testing.T) {
	review := &domain.Review{ID: uuid.New(), ProductID: "prod_1", Rating: 4, Status: domain.StatusPending}
	data, err := json.Marshal(NewReviewEvent(ReviewCreated, review))
	require.NoError(t, err)

	event, err := Decode(data)

	require.NoError(t, err)
	assert.Equal(t, ReviewCreated, event.EventType)
	assert.Equal(t, "prod_1", event.ProductID)
	assert.Equal(t, review.ID, event.ReviewID)
	assert.Equal(t, domain.StatusPending, event.Status)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"event_type":"review.created"}`))
	assert.Error(t, err)
}

func TestModerationHandler(t *testing.T) {
	handler := ModerationHandler(logger.New("test"))
	review := &domain.Review{ID: uuid.New(), ProductID: "prod_1", Rating: 1, Status: domain.StatusFlagged}
	data, _ := json.Marshal(NewReviewEvent(ReviewStatusChanged, review))

	assert.NoError(t, handler(data))
	assert.Error(t, handler([]byte("{")))
}
