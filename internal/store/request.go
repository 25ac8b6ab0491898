package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/bookswap/bookswap-api/internal/domain"
)

// RequestDirection filters request listings relative to a user.
type RequestDirection string

// Possible listing directions.
const (
	DirectionIncoming RequestDirection = "incoming" // user is the book owner
	DirectionOutgoing RequestDirection = "outgoing" // user is the requester
	DirectionAll      RequestDirection = "all"
)

// RequestFilter narrows request listings. Zero values mean "no filter".
type RequestFilter struct {
	Status domain.RequestStatus
	Limit  int
	Offset int
}

// RequestStore defines the interface for exchange request persistence.
//
// The uniqueness invariant (one pending request per requester and book) and
// the serialization of concurrent transitions are both enforced here, at the
// storage layer: Create surfaces the partial unique index as
// ErrDuplicatePendingRequest, and UpdateStatus is a compare-and-set on the
// status column.
type RequestStore interface {
	// Create saves a new request to the store.
	// Returns ErrDuplicatePendingRequest if the requester already has a
	// pending request for the same book.
	// Returns ErrInvalidEntity if a referenced row does not exist.
	Create(ctx context.Context, req *domain.ExchangeRequest) error

	// GetByID retrieves a request by its unique ID.
	// Returns ErrRequestNotFound if the request does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ExchangeRequest, error)

	// UpdateStatus moves the request from one status to another only if the
	// current status still equals "from". A non-nil completedAt is recorded
	// together with the status change.
	// Returns ErrRequestNotFound if the request does not exist and
	// ErrStatusConflict if a concurrent transition won the race.
	UpdateStatus(
		ctx context.Context,
		id uuid.UUID,
		from, to domain.RequestStatus,
		completedAt *time.Time,
	) error

	// SetSideRating records a rating for one side of the request, only if
	// that side has not rated yet.
	// Returns ErrRequestNotFound if the request does not exist and
	// ErrAlreadyRated if the side already carries a rating.
	SetSideRating(
		ctx context.Context,
		id uuid.UUID,
		side domain.RequestSide,
		rating domain.SideRating,
	) error

	// ListByParty returns requests where the user participates in the given
	// direction, newest first.
	ListByParty(
		ctx context.Context,
		userID uuid.UUID,
		direction RequestDirection,
		filter RequestFilter,
	) ([]*domain.ExchangeRequest, error)

	// List returns requests across all users, newest first.
	// Used by the admin moderation endpoints.
	List(ctx context.Context, filter RequestFilter) ([]*domain.ExchangeRequest, error)

	// HasOpenForBook reports whether any pending or accepted request
	// references the given book, either as target or as offered book.
	HasOpenForBook(ctx context.Context, bookID uuid.UUID) (bool, error)

	// Delete permanently removes a request.
	// Returns ErrRequestNotFound if the request does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new RequestStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) RequestStore
}
