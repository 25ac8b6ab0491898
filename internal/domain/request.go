package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RequestKind distinguishes a free transfer from a reciprocal exchange.
type RequestKind string

// Possible request kinds.
const (
	RequestKindFree     RequestKind = "free"
	RequestKindExchange RequestKind = "exchange"
)

// RequestStatus represents the lifecycle state of a transfer request.
type RequestStatus string

// Possible request status values.
const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// Common validation errors for ExchangeRequest.
var (
	ErrEmptyRequestID        = errors.New("request ID cannot be empty")
	ErrEmptyRequesterID      = errors.New("request requester ID cannot be empty")
	ErrEmptyRequestBookID    = errors.New("request book ID cannot be empty")
	ErrEmptyRequestOwnerID   = errors.New("request owner ID cannot be empty")
	ErrMissingOfferedBook    = errors.New("exchange request requires an offered book")
	ErrUnexpectedOfferedBook = errors.New("free request must not carry an offered book")
	ErrRequesterIsOwner      = errors.New("requester cannot be the book owner")
)

// RequestSide identifies which party of a request an action concerns.
type RequestSide string

// The two sides of a request.
const (
	SideRequester RequestSide = "requester"
	SideOwner     RequestSide = "owner"
)

// SideRating holds the rating one party gave the other after completion.
type SideRating struct {
	Rating  int       `json:"rating"`
	Review  string    `json:"review,omitempty"`
	RatedAt time.Time `json:"rated_at"`
}

// ExchangeRequest represents a proposed transfer of a book from its owner
// to the requester, optionally paired with a reciprocal book offered by
// the requester. The owner ID is denormalized from the book at creation
// time so that later ownership transfers do not rewrite request history.
type ExchangeRequest struct {
	ID            uuid.UUID     `json:"id"`
	RequesterID   uuid.UUID     `json:"requester_id"`
	BookID        uuid.UUID     `json:"book_id"`
	OwnerID       uuid.UUID     `json:"owner_id"`
	Kind          RequestKind   `json:"kind"`
	OfferedBookID *uuid.UUID    `json:"offered_book_id,omitempty"`
	Status        RequestStatus `json:"status"`

	// Bilateral ratings, captured at most once per side, only after completion.
	RequesterRating *SideRating `json:"requester_rating,omitempty"`
	OwnerRating     *SideRating `json:"owner_rating,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewExchangeRequest creates a new request in pending status.
// The owner ID must be the current owner of the target book; callers
// denormalize it from the book record before constructing the request.
// Returns an error if validation fails.
func NewExchangeRequest(
	requesterID, bookID, ownerID uuid.UUID,
	kind RequestKind,
	offeredBookID *uuid.UUID,
) (*ExchangeRequest, error) {
	req := &ExchangeRequest{
		ID:            uuid.New(),
		RequesterID:   requesterID,
		BookID:        bookID,
		OwnerID:       ownerID,
		Kind:          kind,
		OfferedBookID: offeredBookID,
		Status:        RequestStatusPending,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks if the ExchangeRequest has valid data.
// Returns an error if any field fails validation.
func (r *ExchangeRequest) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRequestID
	}

	if r.RequesterID == uuid.Nil {
		return ErrEmptyRequesterID
	}

	if r.BookID == uuid.Nil {
		return ErrEmptyRequestBookID
	}

	if r.OwnerID == uuid.Nil {
		return ErrEmptyRequestOwnerID
	}

	if r.RequesterID == r.OwnerID {
		return ErrRequesterIsOwner
	}

	if !isValidRequestKind(r.Kind) {
		return ErrInvalidRequestKind
	}

	if !isValidRequestStatus(r.Status) {
		return ErrInvalidRequestStatus
	}

	switch r.Kind {
	case RequestKindExchange:
		if r.OfferedBookID == nil || *r.OfferedBookID == uuid.Nil {
			return ErrMissingOfferedBook
		}
	case RequestKindFree:
		if r.OfferedBookID != nil {
			return ErrUnexpectedOfferedBook
		}
	}

	return nil
}

// TransitionActor names which party may drive a given transition.
type TransitionActor int

// Actor capabilities for transitions. Values combine as a bitmask.
const (
	ActorRequester TransitionActor = 1 << iota
	ActorOwner

	ActorEither = ActorRequester | ActorOwner
)

type transition struct {
	from, to RequestStatus
}

// transitionTable is the complete set of legal status transitions and the
// party allowed to drive each one. Anything absent is an invalid transition.
var transitionTable = map[transition]TransitionActor{
	{RequestStatusPending, RequestStatusAccepted}:   ActorOwner,
	{RequestStatusPending, RequestStatusRejected}:   ActorOwner,
	{RequestStatusPending, RequestStatusCancelled}:  ActorRequester,
	{RequestStatusAccepted, RequestStatusCompleted}: ActorEither,
	{RequestStatusAccepted, RequestStatusCancelled}: ActorRequester,
}

// CanTransition reports whether moving from one status to another is legal,
// irrespective of who is asking.
func CanTransition(from, to RequestStatus) bool {
	_, ok := transitionTable[transition{from, to}]
	return ok
}

// TransitionAllowedFor reports whether the given actor capability may drive
// the transition. Returns false for transitions absent from the table.
func TransitionAllowedFor(from, to RequestStatus, actor TransitionActor) bool {
	allowed, ok := transitionTable[transition{from, to}]
	return ok && allowed&actor != 0
}

// IsTerminalStatus reports whether no further transitions are permitted
// from the given status.
func IsTerminalStatus(status RequestStatus) bool {
	switch status {
	case RequestStatusRejected, RequestStatusCompleted, RequestStatusCancelled:
		return true
	default:
		return false
	}
}

// ActorCapability returns the transition capability the given user holds on
// this request: requester, owner, or zero when they are not a party.
func (r *ExchangeRequest) ActorCapability(userID uuid.UUID) TransitionActor {
	var actor TransitionActor
	if userID == r.RequesterID {
		actor |= ActorRequester
	}
	if userID == r.OwnerID {
		actor |= ActorOwner
	}
	return actor
}

// IsParty reports whether the given user is the requester or the owner.
func (r *ExchangeRequest) IsParty(userID uuid.UUID) bool {
	return r.ActorCapability(userID) != 0
}

// SideOf returns which side of the request the given user is on.
// The second return value is false when the user is not a party.
func (r *ExchangeRequest) SideOf(userID uuid.UUID) (RequestSide, bool) {
	switch userID {
	case r.RequesterID:
		return SideRequester, true
	case r.OwnerID:
		return SideOwner, true
	default:
		return "", false
	}
}

// RatingBySide returns the rating recorded by the given side, or nil.
// The requester rates the owner and vice versa.
func (r *ExchangeRequest) RatingBySide(side RequestSide) *SideRating {
	switch side {
	case SideRequester:
		return r.RequesterRating
	case SideOwner:
		return r.OwnerRating
	default:
		return nil
	}
}

func isValidRequestKind(kind RequestKind) bool {
	switch kind {
	case RequestKindFree, RequestKindExchange:
		return true
	default:
		return false
	}
}

func isValidRequestStatus(status RequestStatus) bool {
	switch status {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected,
		RequestStatusCompleted, RequestStatusCancelled:
		return true
	default:
		return false
	}
}
