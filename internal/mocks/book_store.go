package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/store"
)

// MockBookStore implements store.BookStore for testing
type MockBookStore struct {
	// Function fields for customizable behavior
	CreateFn            func(ctx context.Context, book *domain.Book) error
	GetByIDFn           func(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	UpdateFn            func(ctx context.Context, book *domain.Book) error
	SetStatusFn         func(ctx context.Context, id uuid.UUID, from, to domain.BookStatus) error
	TransferOwnershipFn func(ctx context.Context, id, newOwnerID uuid.UUID) error
	ListAvailableFn     func(ctx context.Context, limit, offset int) ([]*domain.Book, error)
	ListByOwnerFn       func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error)

	// Data for default implementation
	Books map[uuid.UUID]*domain.Book
}

// Ensure MockBookStore implements store.BookStore
var _ store.BookStore = (*MockBookStore)(nil)

// NewMockBookStore creates a new mock store with initialized defaults
func NewMockBookStore() *MockBookStore {
	return &MockBookStore{
		Books: make(map[uuid.UUID]*domain.Book),
	}
}

// AddBook seeds the in-memory map and returns the store for chaining.
func (m *MockBookStore) AddBook(book *domain.Book) *MockBookStore {
	m.Books[book.ID] = book
	return m
}

// Create implements the BookStore interface
func (m *MockBookStore) Create(ctx context.Context, book *domain.Book) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, book)
	}

	m.Books[book.ID] = book
	return nil
}

// GetByID implements the BookStore interface
func (m *MockBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	book, exists := m.Books[id]
	if !exists {
		return nil, store.ErrBookNotFound
	}
	return book, nil
}

// Update implements the BookStore interface
func (m *MockBookStore) Update(ctx context.Context, book *domain.Book) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, book)
	}

	if _, exists := m.Books[book.ID]; !exists {
		return store.ErrBookNotFound
	}
	m.Books[book.ID] = book
	return nil
}

// SetStatus implements the BookStore interface, mirroring the conditional
// update semantics of the real store.
func (m *MockBookStore) SetStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.BookStatus,
) error {
	if m.SetStatusFn != nil {
		return m.SetStatusFn(ctx, id, from, to)
	}

	book, exists := m.Books[id]
	if !exists {
		return store.ErrBookNotFound
	}
	if book.Status != from {
		return store.ErrStatusConflict
	}
	book.Status = to
	book.UpdatedAt = time.Now().UTC()
	return nil
}

// TransferOwnership implements the BookStore interface
func (m *MockBookStore) TransferOwnership(ctx context.Context, id, newOwnerID uuid.UUID) error {
	if m.TransferOwnershipFn != nil {
		return m.TransferOwnershipFn(ctx, id, newOwnerID)
	}

	book, exists := m.Books[id]
	if !exists {
		return store.ErrBookNotFound
	}
	book.OwnerID = newOwnerID
	book.UpdatedAt = time.Now().UTC()
	return nil
}

// ListAvailable implements the BookStore interface
func (m *MockBookStore) ListAvailable(
	ctx context.Context,
	limit, offset int,
) ([]*domain.Book, error) {
	if m.ListAvailableFn != nil {
		return m.ListAvailableFn(ctx, limit, offset)
	}

	books := []*domain.Book{}
	for _, book := range m.Books {
		if book.Requestable() {
			books = append(books, book)
		}
	}
	return books, nil
}

// ListByOwner implements the BookStore interface
func (m *MockBookStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.Book, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID)
	}

	books := []*domain.Book{}
	for _, book := range m.Books {
		if book.OwnerID == ownerID && book.Active {
			books = append(books, book)
		}
	}
	return books, nil
}

// WithTx implements the BookStore interface. The mock is not transactional,
// so it returns itself.
func (m *MockBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return m
}
