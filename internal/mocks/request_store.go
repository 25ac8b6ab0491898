package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/store"
)

// MockRequestStore implements store.RequestStore for testing
type MockRequestStore struct {
	// Function fields for customizable behavior
	CreateFn         func(ctx context.Context, req *domain.ExchangeRequest) error
	GetByIDFn        func(ctx context.Context, id uuid.UUID) (*domain.ExchangeRequest, error)
	UpdateStatusFn   func(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus, completedAt *time.Time) error
	SetSideRatingFn  func(ctx context.Context, id uuid.UUID, side domain.RequestSide, rating domain.SideRating) error
	ListByPartyFn    func(ctx context.Context, userID uuid.UUID, direction store.RequestDirection, filter store.RequestFilter) ([]*domain.ExchangeRequest, error)
	ListFn           func(ctx context.Context, filter store.RequestFilter) ([]*domain.ExchangeRequest, error)
	HasOpenForBookFn func(ctx context.Context, bookID uuid.UUID) (bool, error)
	DeleteFn         func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation
	Requests map[uuid.UUID]*domain.ExchangeRequest
}

// Ensure MockRequestStore implements store.RequestStore
var _ store.RequestStore = (*MockRequestStore)(nil)

// NewMockRequestStore creates a new mock store with initialized defaults
func NewMockRequestStore() *MockRequestStore {
	return &MockRequestStore{
		Requests: make(map[uuid.UUID]*domain.ExchangeRequest),
	}
}

// AddRequest seeds the in-memory map and returns the store for chaining.
func (m *MockRequestStore) AddRequest(req *domain.ExchangeRequest) *MockRequestStore {
	m.Requests[req.ID] = req
	return m
}

// Create implements the RequestStore interface, mirroring the partial unique
// index on pending (requester, book) pairs.
func (m *MockRequestStore) Create(ctx context.Context, req *domain.ExchangeRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}

	for _, existing := range m.Requests {
		if existing.Status == domain.RequestStatusPending &&
			existing.RequesterID == req.RequesterID &&
			existing.BookID == req.BookID {
			return store.ErrDuplicatePendingRequest
		}
	}
	m.Requests[req.ID] = req
	return nil
}

// GetByID implements the RequestStore interface
func (m *MockRequestStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.ExchangeRequest, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	req, exists := m.Requests[id]
	if !exists {
		return nil, store.ErrRequestNotFound
	}
	return req, nil
}

// UpdateStatus implements the RequestStore interface with the same
// compare-and-set semantics as the real store.
func (m *MockRequestStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.RequestStatus,
	completedAt *time.Time,
) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, from, to, completedAt)
	}

	req, exists := m.Requests[id]
	if !exists {
		return store.ErrRequestNotFound
	}
	if req.Status != from {
		return store.ErrStatusConflict
	}
	req.Status = to
	if completedAt != nil {
		req.CompletedAt = completedAt
	}
	req.UpdatedAt = time.Now().UTC()
	return nil
}

// SetSideRating implements the RequestStore interface
func (m *MockRequestStore) SetSideRating(
	ctx context.Context,
	id uuid.UUID,
	side domain.RequestSide,
	rating domain.SideRating,
) error {
	if m.SetSideRatingFn != nil {
		return m.SetSideRatingFn(ctx, id, side, rating)
	}

	req, exists := m.Requests[id]
	if !exists {
		return store.ErrRequestNotFound
	}
	if req.RatingBySide(side) != nil {
		return store.ErrAlreadyRated
	}

	switch side {
	case domain.SideRequester:
		req.RequesterRating = &rating
	case domain.SideOwner:
		req.OwnerRating = &rating
	}
	req.UpdatedAt = time.Now().UTC()
	return nil
}

// ListByParty implements the RequestStore interface
func (m *MockRequestStore) ListByParty(
	ctx context.Context,
	userID uuid.UUID,
	direction store.RequestDirection,
	filter store.RequestFilter,
) ([]*domain.ExchangeRequest, error) {
	if m.ListByPartyFn != nil {
		return m.ListByPartyFn(ctx, userID, direction, filter)
	}

	requests := []*domain.ExchangeRequest{}
	for _, req := range m.Requests {
		var match bool
		switch direction {
		case store.DirectionIncoming:
			match = req.OwnerID == userID
		case store.DirectionOutgoing:
			match = req.RequesterID == userID
		default:
			match = req.IsParty(userID)
		}
		if match && (filter.Status == "" || req.Status == filter.Status) {
			requests = append(requests, req)
		}
	}
	return requests, nil
}

// List implements the RequestStore interface
func (m *MockRequestStore) List(
	ctx context.Context,
	filter store.RequestFilter,
) ([]*domain.ExchangeRequest, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}

	requests := []*domain.ExchangeRequest{}
	for _, req := range m.Requests {
		if filter.Status == "" || req.Status == filter.Status {
			requests = append(requests, req)
		}
	}
	return requests, nil
}

// HasOpenForBook implements the RequestStore interface
func (m *MockRequestStore) HasOpenForBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	if m.HasOpenForBookFn != nil {
		return m.HasOpenForBookFn(ctx, bookID)
	}

	for _, req := range m.Requests {
		open := req.Status == domain.RequestStatusPending ||
			req.Status == domain.RequestStatusAccepted
		refs := req.BookID == bookID ||
			(req.OfferedBookID != nil && *req.OfferedBookID == bookID)
		if open && refs {
			return true, nil
		}
	}
	return false, nil
}

// Delete implements the RequestStore interface
func (m *MockRequestStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, exists := m.Requests[id]; !exists {
		return store.ErrRequestNotFound
	}
	delete(m.Requests, id)
	return nil
}

// WithTx implements the RequestStore interface. The mock is not
// transactional, so it returns itself.
func (m *MockRequestStore) WithTx(tx *sql.Tx) store.RequestStore {
	return m
}
