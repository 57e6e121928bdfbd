package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewStatus_Next(t *testing.T) {
	tests := []struct {
		from ReviewStatus
		want ReviewStatus
	}{
		{StatusApproved, StatusPending},
		{StatusPending, StatusFlagged},
		{StatusFlagged, StatusApproved},
		{ReviewStatus("archived"), StatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.Next())
		})
	}
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" Approved ")
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, status)

	_, err = ParseStatus("deleted")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReview_HasImageMedia(t *testing.T) {
	tests := []struct {
		name   string
		images []ReviewImage
		want   bool
	}{
		{"no media", nil, false},
		{"video only", []ReviewImage{{URL: "a.mp4", Type: "video/mp4"}}, false},
		{"untyped media", []ReviewImage{{URL: "a"}}, false},
		{"prefix must match at start", []ReviewImage{{URL: "a", Type: "x-image/png"}}, false},
		{"mixed media", []ReviewImage{{URL: "a.mp4", Type: "video/mp4"}, {URL: "b.png", Type: "image/png"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Review{Images: tt.images}
			assert.Equal(t, tt.want, r.HasImageMedia())
		})
	}
}

func TestDuplicateReviewError(t *testing.T) {
	var err error = &DuplicateReviewError{OrderLineItemID: "line_1"}

	assert.ErrorIs(t, err, ErrDuplicateReview)
	assert.Contains(t, err.Error(), "line_1")
}
