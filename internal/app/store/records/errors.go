// internal/app/store/records/errors.go
package records

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any *NotFoundError via errors.Is.
	ErrNotFound = errors.New("records: not found")

	// ErrConflict matches any *ConflictError via errors.Is.
	ErrConflict = errors.New("records: conflict")

	// ErrSubscriptionClosed is returned by a subscription that was cancelled
	// rather than failed.
	ErrSubscriptionClosed = errors.New("records: subscription closed")
)

// NotFoundError reports a mutation or read that targeted a missing record.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("records: %s/%s not found", e.Collection, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports an Add whose id is already taken in the collection.
type ConflictError struct {
	Collection string
	ID         string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("records: %s/%s already exists", e.Collection, e.ID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// WriteError reports that the backend rejected or could not receive a write.
type WriteError struct {
	Op         string // add, update, delete
	Collection string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("records: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// SubscriptionError is the terminal error of a live query.
type SubscriptionError struct {
	Collection string
	Err        error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("records: subscription on %s failed: %v", e.Collection, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }
