package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/bookswap/bookswap-api/internal/domain"
)

// BookStore defines the interface for book data persistence.
type BookStore interface {
	// Create saves a new book to the store.
	// Returns ErrInvalidEntity if the owner does not exist.
	// Returns validation errors from the domain Book if data is invalid.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its unique ID.
	// Returns ErrBookNotFound if the book does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// Update modifies an existing book's details.
	// Returns ErrBookNotFound if the book does not exist.
	Update(ctx context.Context, book *domain.Book) error

	// SetStatus performs a conditional availability update: the status is
	// changed to "to" only if the current status still equals "from".
	// Returns ErrBookNotFound if the book does not exist and
	// ErrStatusConflict if a concurrent writer changed the status first.
	SetStatus(ctx context.Context, id uuid.UUID, from, to domain.BookStatus) error

	// TransferOwnership reassigns the book to a new owner.
	// Returns ErrBookNotFound if the book does not exist.
	TransferOwnership(ctx context.Context, id, newOwnerID uuid.UUID) error

	// ListAvailable returns active, available books ordered by creation
	// time, newest first.
	ListAvailable(ctx context.Context, limit, offset int) ([]*domain.Book, error)

	// ListByOwner returns all active books owned by the given user.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Book, error)

	// WithTx returns a new BookStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) BookStore
}
