// Package optimistic tracks locally edited values that are waiting for a remote
// confirmation.
//
// A Field is either Stable, showing a confirmed value, or Pending, showing a
// tentative value while remembering the one it replaced:
//
//	Stable(v)             --Begin(t)-->      Pending(t, prev=v)
//	Pending(t, prev=v)    --Resolve(nil)-->  Stable(t)
//	Pending(t, prev=v)    --Resolve(err)-->  Stable(v)
//	Pending(...)          --Begin(...)-->    ErrPending, unchanged
package optimistic

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrPending is returned by Begin while an earlier edit is still unresolved
	ErrPending = errors.New("optimistic: edit already pending")
	// ErrNotPending is returned by Resolve when there is nothing to resolve
	ErrNotPending = errors.New("optimistic: no pending edit")
)

// State of a Field
type State int

const (
	Stable State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "stable"
}

// Snapshot is a consistent view of a Field
type Snapshot[T any] struct {
	State    State
	Value    T
	Previous T
}

// Field is a single optimistically edited value. It is safe for concurrent use.
type Field[T any] struct {
	mu       sync.Mutex
	state    State
	value    T
	previous T
}

// NewField returns a Stable field holding value
func NewField[T any](value T) *Field[T] {
	return &Field[T]{value: value}
}

// Value returns the value to display: the tentative one while pending
func (f *Field[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// State reports whether the field is waiting for a confirmation
func (f *Field[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Snapshot returns state, value and previous value atomically
func (f *Field[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot[T]{State: f.state, Value: f.value, Previous: f.previous}
}

// Begin shows tentative immediately and remembers the value it replaces
func (f *Field[T]) Begin(tentative T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Pending {
		return ErrPending
	}

	f.previous = f.value
	f.value = tentative
	f.state = Pending
	return nil
}

// Resolve settles a pending edit with the outcome of the remote update.
// A nil remoteErr keeps the tentative value, anything else restores the previous one.
// It returns the value the field settled on.
func (f *Field[T]) Resolve(remoteErr error) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Pending {
		return f.value, ErrNotPending
	}

	if remoteErr != nil {
		f.value = f.previous
	}

	var zero T
	f.previous = zero
	f.state = Stable
	return f.value, nil
}

// Apply runs Begin, the remote update and Resolve in sequence. The remote error, if
// any, is returned after the field has been reverted.
func (f *Field[T]) Apply(ctx context.Context, tentative T, remote func(ctx context.Context, value T) error) error {
	if err := f.Begin(tentative); err != nil {
		return err
	}

	err := remote(ctx, tentative)
	if _, resolveErr := f.Resolve(err); resolveErr != nil {
		return resolveErr
	}
	return err
}
