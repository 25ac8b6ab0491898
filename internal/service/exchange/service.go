package exchange

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/store"
)

// TransferInput carries the caller-supplied fields for a new request.
type TransferInput struct {
	BookID        uuid.UUID
	Kind          domain.RequestKind
	OfferedBookID *uuid.UUID
}

// Service drives the request lifecycle: creation, status transitions with
// their book side effects, post-completion ratings, and deletion. All
// mutating operations that touch both a request and a book commit in a
// single transaction.
type Service interface {
	// RequestTransfer creates a pending request for the given book on
	// behalf of the requester. The book must be active and available, the
	// requester must not own it, and for exchange requests the offered book
	// must be an active, available book owned by the requester.
	RequestTransfer(
		ctx context.Context,
		requesterID uuid.UUID,
		in TransferInput,
	) (*domain.ExchangeRequest, error)

	// Transition moves the request to the target status on behalf of the
	// actor, applying book side effects atomically:
	// accepted marks the target book not available, completed transfers
	// ownership (both books for exchanges) and records the completion time,
	// and cancelling an accepted request restores the target book's
	// availability.
	Transition(
		ctx context.Context,
		requestID, actorID uuid.UUID,
		target domain.RequestStatus,
	) (*domain.ExchangeRequest, error)

	// ForceCancel cancels a non-terminal request regardless of actor,
	// restoring the target book's availability if the request had been
	// accepted. Used by admin moderation.
	ForceCancel(ctx context.Context, requestID uuid.UUID) (*domain.ExchangeRequest, error)

	// Rate records the rater's rating of their counterparty on a completed
	// request and folds it into the counterparty's running average. Each
	// side may rate at most once.
	Rate(
		ctx context.Context,
		requestID, raterID uuid.UUID,
		rating int,
		review string,
	) (*domain.ExchangeRequest, error)

	// Delete permanently removes a cancelled or rejected request. Only the
	// requester may delete.
	Delete(ctx context.Context, requestID, actorID uuid.UUID) error

	// Get returns a single request, visible only to its parties.
	Get(ctx context.Context, requestID, actorID uuid.UUID) (*domain.ExchangeRequest, error)

	// ListForUser returns the user's requests in the given direction.
	ListForUser(
		ctx context.Context,
		userID uuid.UUID,
		direction store.RequestDirection,
		filter store.RequestFilter,
	) ([]*domain.ExchangeRequest, error)

	// ListAll returns requests across all users. Admin only.
	ListAll(ctx context.Context, filter store.RequestFilter) ([]*domain.ExchangeRequest, error)
}
