package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/platform/logger"
	"github.com/bookswap/bookswap-api/internal/store"
)

// PostgresBookStore implements the store.BookStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBookStore creates a new PostgreSQL implementation of the
// BookStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresBookStore(db store.DBTX, logger *slog.Logger) *PostgresBookStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

// Ensure PostgresBookStore implements store.BookStore interface
var _ store.BookStore = (*PostgresBookStore)(nil)

const bookColumns = `id, owner_id, title, author, genre, description,
	status, active, created_at, updated_at`

// Create implements store.BookStore.Create
// Returns store.ErrInvalidEntity if the owner does not exist.
func (s *PostgresBookStore) Create(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := book.Validate(); err != nil {
		log.Warn("book validation failed during create",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return err
	}

	query := `
		INSERT INTO books (id, owner_id, title, author, genre, description,
			status, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		book.ID,
		book.OwnerID,
		book.Title,
		book.Author,
		book.Genre,
		book.Description,
		book.Status,
		book.Active,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create book",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()),
			slog.String("owner_id", book.OwnerID.String()))
		return mapError(err)
	}

	log.Info("book created successfully",
		slog.String("book_id", book.ID.String()),
		slog.String("owner_id", book.OwnerID.String()))
	return nil
}

// GetByID implements store.BookStore.GetByID
// Returns store.ErrBookNotFound if the book does not exist.
func (s *PostgresBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := s.scanBook(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("book not found", slog.String("book_id", id.String()))
			return nil, store.ErrBookNotFound
		}
		log.Error("failed to get book by ID",
			slog.String("error", err.Error()),
			slog.String("book_id", id.String()))
		return nil, err
	}

	return book, nil
}

// Update implements store.BookStore.Update
// Returns store.ErrBookNotFound if the book does not exist.
func (s *PostgresBookStore) Update(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := book.Validate(); err != nil {
		log.Warn("book validation failed during update",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return err
	}

	book.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE books
		SET owner_id = $1, title = $2, author = $3, genre = $4,
			description = $5, status = $6, active = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		book.OwnerID,
		book.Title,
		book.Author,
		book.Genre,
		book.Description,
		book.Status,
		book.Active,
		book.UpdatedAt,
		book.ID,
	)

	if err != nil {
		log.Error("failed to update book",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return mapError(err)
	}

	return checkRowsAffected(result, store.ErrBookNotFound)
}

// SetStatus implements store.BookStore.SetStatus
// The update is conditional on the current status still matching "from",
// which serializes concurrent availability changes.
func (s *PostgresBookStore) SetStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.BookStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE books
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := s.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		log.Error("failed to set book status",
			slog.String("error", err.Error()),
			slog.String("book_id", id.String()),
			slog.String("from", string(from)),
			slog.String("to", string(to)))
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a missing book from a lost race on the status column.
		var current string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM books WHERE id = $1`, id).
			Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrBookNotFound
		}
		if err != nil {
			return err
		}
		log.Debug("book status conditional update lost race",
			slog.String("book_id", id.String()),
			slog.String("expected", string(from)),
			slog.String("current", current))
		return store.ErrStatusConflict
	}

	log.Info("book status updated",
		slog.String("book_id", id.String()),
		slog.String("status", string(to)))
	return nil
}

// TransferOwnership implements store.BookStore.TransferOwnership
// Returns store.ErrBookNotFound if the book does not exist.
func (s *PostgresBookStore) TransferOwnership(ctx context.Context, id, newOwnerID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE books
		SET owner_id = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, newOwnerID, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to transfer book ownership",
			slog.String("error", err.Error()),
			slog.String("book_id", id.String()),
			slog.String("new_owner_id", newOwnerID.String()))
		return mapError(err)
	}

	if err := checkRowsAffected(result, store.ErrBookNotFound); err != nil {
		return err
	}

	log.Info("book ownership transferred",
		slog.String("book_id", id.String()),
		slog.String("new_owner_id", newOwnerID.String()))
	return nil
}

// ListAvailable implements store.BookStore.ListAvailable
func (s *PostgresBookStore) ListAvailable(
	ctx context.Context,
	limit, offset int,
) ([]*domain.Book, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + bookColumns + `
		FROM books
		WHERE active AND status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	return s.queryBooks(ctx, query, domain.BookStatusAvailable, limit, offset)
}

// ListByOwner implements store.BookStore.ListByOwner
func (s *PostgresBookStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + `
		FROM books
		WHERE active AND owner_id = $1
		ORDER BY created_at DESC`

	return s.queryBooks(ctx, query, ownerID)
}

// WithTx implements store.BookStore.WithTx
func (s *PostgresBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return &PostgresBookStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresBookStore) queryBooks(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query books", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	books := []*domain.Book{}
	for rows.Next() {
		book, err := s.scanBook(rows)
		if err != nil {
			log.Error("failed to scan book row", slog.String("error", err.Error()))
			return nil, err
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return books, nil
}

func (s *PostgresBookStore) scanBook(row rowScanner) (*domain.Book, error) {
	var book domain.Book
	var status string

	err := row.Scan(
		&book.ID,
		&book.OwnerID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.Description,
		&status,
		&book.Active,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	book.Status = domain.BookStatus(status)
	return &book, nil
}
