package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/platform/logger"
	"github.com/bookswap/bookswap-api/internal/store"
)

// pendingRequestConstraint is the partial unique index enforcing at most one
// pending request per (requester, book) pair. See the requests migration.
const pendingRequestConstraint = "requests_pending_requester_book_key"

// PostgresRequestStore implements the store.RequestStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRequestStore creates a new PostgreSQL implementation of the
// RequestStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresRequestStore(db store.DBTX, logger *slog.Logger) *PostgresRequestStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "request_store")),
	}
}

// Ensure PostgresRequestStore implements store.RequestStore interface
var _ store.RequestStore = (*PostgresRequestStore)(nil)

const requestColumns = `id, requester_id, book_id, owner_id, kind, offered_book_id,
	status, requester_rating, requester_review, requester_rated_at,
	owner_rating, owner_review, owner_rated_at,
	completed_at, created_at, updated_at`

// Create implements store.RequestStore.Create
// The partial unique index on (requester_id, book_id) WHERE status='pending'
// makes the duplicate-pending check atomic with the insert.
func (s *PostgresRequestStore) Create(ctx context.Context, req *domain.ExchangeRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := req.Validate(); err != nil {
		log.Warn("request validation failed during create",
			slog.String("error", err.Error()),
			slog.String("request_id", req.ID.String()))
		return err
	}

	query := `
		INSERT INTO requests (id, requester_id, book_id, owner_id, kind,
			offered_book_id, status, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		req.ID,
		req.RequesterID,
		req.BookID,
		req.OwnerID,
		req.Kind,
		req.OfferedBookID,
		req.Status,
		req.CompletedAt,
		req.CreatedAt,
		req.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, pendingRequestConstraint) {
			log.Debug("duplicate pending request",
				slog.String("requester_id", req.RequesterID.String()),
				slog.String("book_id", req.BookID.String()))
			return store.ErrDuplicatePendingRequest
		}

		log.Error("failed to create request",
			slog.String("error", err.Error()),
			slog.String("request_id", req.ID.String()))
		return mapError(err)
	}

	log.Info("request created successfully",
		slog.String("request_id", req.ID.String()),
		slog.String("kind", string(req.Kind)),
		slog.String("requester_id", req.RequesterID.String()),
		slog.String("book_id", req.BookID.String()))
	return nil
}

// GetByID implements store.RequestStore.GetByID
// Returns store.ErrRequestNotFound if the request does not exist.
func (s *PostgresRequestStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.ExchangeRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	req, err := s.scanRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("request not found", slog.String("request_id", id.String()))
			return nil, store.ErrRequestNotFound
		}
		log.Error("failed to get request by ID",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()))
		return nil, err
	}

	return req, nil
}

// UpdateStatus implements store.RequestStore.UpdateStatus
// The UPDATE is guarded on the current status so that concurrent transition
// attempts are serialized: only one of two racing writers can see its
// expected "from" value.
func (s *PostgresRequestStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.RequestStatus,
	completedAt *time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE requests
		SET status = $1, completed_at = COALESCE($2, completed_at), updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := s.db.ExecContext(ctx, query, to, completedAt, time.Now().UTC(), id, from)
	if err != nil {
		log.Error("failed to update request status",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()),
			slog.String("from", string(from)),
			slog.String("to", string(to)))
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var current string
		err := s.db.QueryRowContext(ctx, `SELECT status FROM requests WHERE id = $1`, id).
			Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrRequestNotFound
		}
		if err != nil {
			return err
		}
		log.Debug("request status conditional update lost race",
			slog.String("request_id", id.String()),
			slog.String("expected", string(from)),
			slog.String("current", current))
		return store.ErrStatusConflict
	}

	log.Info("request status updated",
		slog.String("request_id", id.String()),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return nil
}

// SetSideRating implements store.RequestStore.SetSideRating
// The UPDATE is guarded on the rating column still being NULL, making the
// "one rating per side" rule atomic.
func (s *PostgresRequestStore) SetSideRating(
	ctx context.Context,
	id uuid.UUID,
	side domain.RequestSide,
	rating domain.SideRating,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var query string
	switch side {
	case domain.SideRequester:
		query = `
			UPDATE requests
			SET requester_rating = $1, requester_review = $2,
				requester_rated_at = $3, updated_at = $4
			WHERE id = $5 AND requester_rating IS NULL
		`
	case domain.SideOwner:
		query = `
			UPDATE requests
			SET owner_rating = $1, owner_review = $2,
				owner_rated_at = $3, updated_at = $4
			WHERE id = $5 AND owner_rating IS NULL
		`
	default:
		return fmt.Errorf("unknown request side: %q", side)
	}

	result, err := s.db.ExecContext(
		ctx, query, rating.Rating, rating.Review, rating.RatedAt, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to set side rating",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()),
			slog.String("side", string(side)))
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var exists bool
		err := s.db.QueryRowContext(
			ctx, `SELECT EXISTS (SELECT 1 FROM requests WHERE id = $1)`, id).
			Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return store.ErrRequestNotFound
		}
		return store.ErrAlreadyRated
	}

	log.Info("side rating recorded",
		slog.String("request_id", id.String()),
		slog.String("side", string(side)),
		slog.Int("rating", rating.Rating))
	return nil
}

// ListByParty implements store.RequestStore.ListByParty
func (s *PostgresRequestStore) ListByParty(
	ctx context.Context,
	userID uuid.UUID,
	direction store.RequestDirection,
	filter store.RequestFilter,
) ([]*domain.ExchangeRequest, error) {
	var where string
	switch direction {
	case store.DirectionIncoming:
		where = `owner_id = $1`
	case store.DirectionOutgoing:
		where = `requester_id = $1`
	default:
		where = `(requester_id = $1 OR owner_id = $1)`
	}

	args := []any{userID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`SELECT %s
		FROM requests
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		requestColumns, where, len(args)-1, len(args))

	return s.queryRequests(ctx, query, args...)
}

// List implements store.RequestStore.List
func (s *PostgresRequestStore) List(
	ctx context.Context,
	filter store.RequestFilter,
) ([]*domain.ExchangeRequest, error) {
	where := `TRUE`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = `status = $1`
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`SELECT %s
		FROM requests
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		requestColumns, where, len(args)-1, len(args))

	return s.queryRequests(ctx, query, args...)
}

// HasOpenForBook implements store.RequestStore.HasOpenForBook
func (s *PostgresRequestStore) HasOpenForBook(
	ctx context.Context,
	bookID uuid.UUID,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM requests
			WHERE (book_id = $1 OR offered_book_id = $1)
				AND status IN ($2, $3)
		)
	`
	var exists bool
	err := s.db.QueryRowContext(
		ctx, query, bookID,
		domain.RequestStatusPending, domain.RequestStatusAccepted,
	).Scan(&exists)
	if err != nil {
		log.Error("failed to check open requests for book",
			slog.String("error", err.Error()),
			slog.String("book_id", bookID.String()))
		return false, err
	}

	return exists, nil
}

// Delete implements store.RequestStore.Delete
// Returns store.ErrRequestNotFound if the request does not exist.
func (s *PostgresRequestStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete request",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()))
		return mapError(err)
	}

	if err := checkRowsAffected(result, store.ErrRequestNotFound); err != nil {
		return err
	}

	log.Info("request deleted", slog.String("request_id", id.String()))
	return nil
}

// WithTx implements store.RequestStore.WithTx
func (s *PostgresRequestStore) WithTx(tx *sql.Tx) store.RequestStore {
	return &PostgresRequestStore{
		db:     tx,
		logger: s.logger,
	}
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *PostgresRequestStore) queryRequests(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.ExchangeRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query requests", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	requests := []*domain.ExchangeRequest{}
	for rows.Next() {
		req, err := s.scanRequest(rows)
		if err != nil {
			log.Error("failed to scan request row", slog.String("error", err.Error()))
			return nil, err
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return requests, nil
}

func (s *PostgresRequestStore) scanRequest(row rowScanner) (*domain.ExchangeRequest, error) {
	var req domain.ExchangeRequest
	var kind, status string
	var requesterRating, ownerRating sql.NullInt64
	var requesterReview, ownerReview sql.NullString
	var requesterRatedAt, ownerRatedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.BookID,
		&req.OwnerID,
		&kind,
		&req.OfferedBookID,
		&status,
		&requesterRating,
		&requesterReview,
		&requesterRatedAt,
		&ownerRating,
		&ownerReview,
		&ownerRatedAt,
		&req.CompletedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Kind = domain.RequestKind(kind)
	req.Status = domain.RequestStatus(status)

	if requesterRating.Valid {
		req.RequesterRating = &domain.SideRating{
			Rating:  int(requesterRating.Int64),
			Review:  requesterReview.String,
			RatedAt: requesterRatedAt.Time,
		}
	}
	if ownerRating.Valid {
		req.OwnerRating = &domain.SideRating{
			Rating:  int(ownerRating.Int64),
			Review:  ownerReview.String,
			RatedAt: ownerRatedAt.Time,
		}
	}

	return &req, nil
}
