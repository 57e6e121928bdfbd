package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

func TestResponseRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewResponseRepository(db)

	reviewID, responseID := uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery("INSERT INTO product_review_responses").
		WithArgs(reviewID, "Thanks for the feedback").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(responseID.String(), now, now))

	response := &domain.ReviewResponse{ReviewID: reviewID, Content: "Thanks for the feedback"}
	err := repo.Create(context.Background(), response)

	require.NoError(t, err)
	assert.Equal(t, responseID, response.ID)
}

func TestResponseRepository_Create_MapsConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		code pq.ErrorCode
		want error
	}{
		{"duplicate response", pqUniqueViolation, domain.ErrAlreadyExists},
		{"missing review", pqForeignKeyViolation, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewResponseRepository(db)

			mock.ExpectQuery("INSERT INTO product_review_responses").WillReturnError(&pq.Error{Code: tt.code})

			err := repo.Create(context.Background(), &domain.ReviewResponse{ReviewID: uuid.New(), Content: "hi"})

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResponseRepository_Update_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewResponseRepository(db)

	mock.ExpectQuery("UPDATE product_review_responses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}))

	err := repo.Update(context.Background(), &domain.ReviewResponse{ReviewID: uuid.New(), Content: "edit"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResponseRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewResponseRepository(db)
	reviewID := uuid.New()

	mock.ExpectExec("UPDATE product_review_responses SET deleted_at").
		WithArgs(reviewID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE product_review_responses SET deleted_at").
		WithArgs(reviewID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), reviewID))
	assert.ErrorIs(t, repo.Delete(context.Background(), reviewID), domain.ErrNotFound)
}
