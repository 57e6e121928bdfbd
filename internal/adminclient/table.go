package adminclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/optimistic"
)

const defaultBulkConcurrency = 4

// Moderator is the remote side of the edits a Table makes
type Moderator interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) (*domain.Review, error)
	UpdateVerified(ctx context.Context, id uuid.UUID, verified bool) (*domain.Review, error)
}

type row struct {
	review   *domain.Review
	status   *optimistic.Field[domain.ReviewStatus]
	verified *optimistic.Field[bool]
}

// Row is a point-in-time view of a table row
type Row struct {
	ID              uuid.UUID           `yaml:"id"`
	ProductID       string              `yaml:"product_id"`
	Name            string              `yaml:"name,omitempty"`
	Rating          int                 `yaml:"rating"`
	Images          int                 `yaml:"images"`
	Status          domain.ReviewStatus `yaml:"status"`
	StatusPending   bool                `yaml:"status_pending,omitempty"`
	Verified        bool                `yaml:"verified"`
	VerifiedPending bool                `yaml:"verified_pending,omitempty"`
}

// Outcome is the result of one edit of a bulk operation
type Outcome struct {
	ID    uuid.UUID `yaml:"id"`
	Value string    `yaml:"value"`
	Err   error     `yaml:"-"`
}

// Table keeps a local copy of reviews and applies moderation edits optimistically:
// the new value shows at once and is reverted if the remote update fails.
type Table struct {
	remote      Moderator
	concurrency int

	mu    sync.RWMutex
	rows  map[uuid.UUID]*row
	order []uuid.UUID
}

// NewTable creates an empty table backed by remote
func NewTable(remote Moderator) *Table {
	return &Table{
		remote:      remote,
		concurrency: defaultBulkConcurrency,
		rows:        make(map[uuid.UUID]*row),
	}
}

// Load replaces the rows of the table
func (t *Table) Load(reviews []*domain.Review) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows = make(map[uuid.UUID]*row, len(reviews))
	t.order = t.order[:0]
	for _, r := range reviews {
		if _, dup := t.rows[r.ID]; dup {
			continue
		}
		t.rows[r.ID] = &row{
			review:   r,
			status:   optimistic.NewField(r.Status),
			verified: optimistic.NewField(r.Verified),
		}
		t.order = append(t.order, r.ID)
	}
}

// Rows returns the rows in load order with their displayed values
func (t *Table) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Row, 0, len(t.order))
	for _, id := range t.order {
		r := t.rows[id]
		status := r.status.Snapshot()
		verified := r.verified.Snapshot()

		view := Row{
			ID:              id,
			ProductID:       r.review.ProductID,
			Rating:          r.review.Rating,
			Images:          len(r.review.Images),
			Status:          status.Value,
			StatusPending:   status.State == optimistic.Pending,
			Verified:        verified.Value,
			VerifiedPending: verified.State == optimistic.Pending,
		}
		if r.review.Name != nil {
			view.Name = *r.review.Name
		}
		out = append(out, view)
	}
	return out
}

func (t *Table) row(id uuid.UUID) (*row, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.rows[id]
	if !ok {
		return nil, fmt.Errorf("not loaded: %w", domain.ErrNotFound)
	}
	return r, nil
}

// CycleStatus moves a review to the next status (approved, pending, flagged, approved, ...)
// and returns the status the row settled on.
func (t *Table) CycleStatus(ctx context.Context, id uuid.UUID) (domain.ReviewStatus, error) {
	r, err := t.row(id)
	if err != nil {
		return "", err
	}

	next := r.status.Value().Next()
	err = r.status.Apply(ctx, next, func(ctx context.Context, status domain.ReviewStatus) error {
		_, err := t.remote.UpdateStatus(ctx, id, status)
		return err
	})
	return r.status.Value(), err
}

// ToggleVerified flips the verification flag of a review and returns the value the row settled on
func (t *Table) ToggleVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	r, err := t.row(id)
	if err != nil {
		return false, err
	}

	err = r.verified.Apply(ctx, !r.verified.Value(), func(ctx context.Context, verified bool) error {
		_, err := t.remote.UpdateVerified(ctx, id, verified)
		return err
	})
	return r.verified.Value(), err
}

// CycleStatusAll cycles the status of every given review concurrently. A failed edit
// does not stop the others; the joined error lists every failure.
func (t *Table) CycleStatusAll(ctx context.Context, ids []uuid.UUID) ([]Outcome, error) {
	return t.bulk(ctx, ids, func(ctx context.Context, id uuid.UUID) (string, error) {
		status, err := t.CycleStatus(ctx, id)
		return string(status), err
	})
}

// ToggleVerifiedAll toggles the verification flag of every given review concurrently
func (t *Table) ToggleVerifiedAll(ctx context.Context, ids []uuid.UUID) ([]Outcome, error) {
	return t.bulk(ctx, ids, func(ctx context.Context, id uuid.UUID) (string, error) {
		verified, err := t.ToggleVerified(ctx, id)
		return fmt.Sprintf("%t", verified), err
	})
}

func (t *Table) bulk(ctx context.Context, ids []uuid.UUID, edit func(context.Context, uuid.UUID) (string, error)) ([]Outcome, error) {
	outcomes := make([]Outcome, len(ids))

	var g errgroup.Group
	g.SetLimit(t.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			value, err := edit(ctx, id)
			outcomes[i] = Outcome{ID: id, Value: value, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("review %s: %w", o.ID, o.Err))
		}
	}
	return outcomes, errors.Join(errs...)
}
