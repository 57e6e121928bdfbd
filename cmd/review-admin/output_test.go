package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/adminclient"
	"github.com/Pesokrava/product_reviews/internal/domain"
)

func TestWriteRows_MarksPendingValues(t *testing.T) {
	var buf bytes.Buffer
	id := uuid.New()

	err := writeRows(&buf, []adminclient.Row{{
		ID:            id,
		ProductID:     "prod_1",
		Rating:        4,
		Status:        domain.StatusFlagged,
		StatusPending: true,
		Verified:      true,
	}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, id.String())
	assert.Contains(t, out, "flagged*")
	assert.NotContains(t, out, "true*")
}

func TestWriteYAML_Outcomes(t *testing.T) {
	var buf bytes.Buffer
	ok, failed := uuid.New(), uuid.New()

	err := writeYAML(&buf, outcomeView([]adminclient.Outcome{
		{ID: ok, Value: "pending"},
		{ID: failed, Value: "approved", Err: errors.New("boom")},
	}))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "id: "+ok.String())
	assert.Contains(t, out, "value: pending")
	assert.Contains(t, out, "error: boom")
}

func TestWriteSample(t *testing.T) {
	t.Run("empty message", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSample(&buf, &adminclient.RandomSample{Message: "No reviews found with status: approved"}))
		assert.Equal(t, "No reviews found with status: approved\n", buf.String())
	})

	t.Run("summary", func(t *testing.T) {
		var buf bytes.Buffer
		title := "Great"
		sample := &adminclient.RandomSample{
			Reviews:                         []*domain.Review{{ID: uuid.New(), ProductID: "prod_1", Rating: 5, Title: &title}},
			TotalAvailable:                  3,
			TotalWithImageMediaAvailable:    1,
			TotalWithoutImageMediaAvailable: 2,
			TotalRequested:                  1,
			Returned:                        1,
			SelectedWithoutImageMedia:       1,
		}
		require.NoError(t, writeSample(&buf, sample))
		assert.Contains(t, buf.String(), "Great")
		assert.Contains(t, buf.String(), "returned 1 of 1 requested")
	})
}
