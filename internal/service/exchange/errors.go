package exchange

import (
	"errors"
	"fmt"

	"github.com/bookswap/bookswap-api/internal/domain"
)

// Sentinel errors returned by the lifecycle service. Handlers map these to
// HTTP status codes; everything else surfaces as an internal error.
var (
	// ErrRequestNotFound indicates the request does not exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrBookNotFound indicates the target or offered book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrForbidden indicates the actor is not allowed to perform the
	// operation on this request.
	ErrForbidden = errors.New("actor not allowed to perform this operation")

	// ErrInvalidState is the base error for operations rejected because of
	// the current state of the request or the books involved. The more
	// specific errors below wrap it.
	ErrInvalidState = errors.New("operation not valid in current state")

	// ErrBookUnavailable indicates the target or offered book is inactive
	// or not currently available.
	ErrBookUnavailable = fmt.Errorf("book is not available: %w", ErrInvalidState)

	// ErrOwnBook indicates a user tried to request their own book.
	ErrOwnBook = fmt.Errorf("cannot request own book: %w", ErrInvalidState)

	// ErrOfferedBookNotOwned indicates the offered book does not belong to
	// the requester.
	ErrOfferedBookNotOwned = fmt.Errorf(
		"offered book is not owned by requester: %w", ErrInvalidState)

	// ErrDuplicatePendingRequest indicates the requester already has a
	// pending request for the same book.
	ErrDuplicatePendingRequest = fmt.Errorf(
		"a pending request for this book already exists: %w", ErrInvalidState)

	// ErrNotCompleted indicates a rating was attempted before completion.
	ErrNotCompleted = fmt.Errorf(
		"request must be completed before rating: %w", ErrInvalidState)

	// ErrAlreadyRated indicates the rater's side already carries a rating.
	ErrAlreadyRated = fmt.Errorf("this side has already rated: %w", ErrInvalidState)

	// ErrNotDeletable indicates a delete was attempted on a request that is
	// neither cancelled nor rejected.
	ErrNotDeletable = fmt.Errorf(
		"only cancelled or rejected requests can be deleted: %w", ErrInvalidState)
)

// InvalidTransitionError is returned when the requested status change is not
// an edge of the lifecycle table, including the case where a concurrent
// transition moved the request first. It reports both statuses so the caller
// can see what the request looks like now.
type InvalidTransitionError struct {
	From domain.RequestStatus
	To   domain.RequestStatus
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}

// Unwrap makes the error match ErrInvalidState with errors.Is.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidState
}

// NewInvalidTransitionError creates an InvalidTransitionError for the given
// status pair.
func NewInvalidTransitionError(from, to domain.RequestStatus) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}
