package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	FullName string `json:"full_name" validate:"required"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Status   string `json:"status" validate:"review_status"`
}

func TestReviewStatusRule(t *testing.T) {
	assert.NoError(t, Get().Struct(sample{FullName: "A", Rating: 3, Status: "flagged"}))
	assert.Error(t, Get().Struct(sample{FullName: "A", Rating: 3, Status: "deleted"}))
}

func TestDescribe_UsesJSONNames(t *testing.T) {
	err := Get().Struct(sample{Rating: 9, Status: "approved"})
	require.Error(t, err)

	assert.Equal(t, "full_name: required; rating: max=5", Describe(err))
}

func TestDescribe_PlainError(t *testing.T) {
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}
