package exchange

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/store"
)

// txRunner executes fn within a transaction. Production code wires this to
// store.RunInTransaction; unit tests substitute a pass-through.
type txRunner func(ctx context.Context, fn store.TxFn) error

// serviceImpl implements the Service interface.
type serviceImpl struct {
	requests store.RequestStore
	books    store.BookStore
	users    store.UserStore
	runTx    txRunner
	logger   *slog.Logger
}

// Ensure serviceImpl implements Service.
var _ Service = (*serviceImpl)(nil)

// NewService creates the lifecycle service backed by the given database and
// stores. It returns an error if any required dependency is nil.
func NewService(
	db *sql.DB,
	requests store.RequestStore,
	books store.BookStore,
	users store.UserStore,
	logger *slog.Logger,
) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if requests == nil {
		return nil, fmt.Errorf("request store cannot be nil")
	}
	if books == nil {
		return nil, fmt.Errorf("book store cannot be nil")
	}
	if users == nil {
		return nil, fmt.Errorf("user store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		requests: requests,
		books:    books,
		users:    users,
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
		logger: logger.With(slog.String("component", "exchange_service")),
	}, nil
}

// RequestTransfer implements Service.RequestTransfer.
func (s *serviceImpl) RequestTransfer(
	ctx context.Context,
	requesterID uuid.UUID,
	in TransferInput,
) (*domain.ExchangeRequest, error) {
	book, err := s.books.GetByID(ctx, in.BookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	if book.OwnerID == requesterID {
		return nil, ErrOwnBook
	}
	if !book.Requestable() {
		return nil, ErrBookUnavailable
	}

	if in.Kind == domain.RequestKindExchange {
		if in.OfferedBookID == nil {
			return nil, domain.ErrMissingOfferedBook
		}
		offered, err := s.books.GetByID(ctx, *in.OfferedBookID)
		if err != nil {
			if errors.Is(err, store.ErrBookNotFound) {
				return nil, ErrBookNotFound
			}
			return nil, fmt.Errorf("failed to load offered book: %w", err)
		}
		if offered.OwnerID != requesterID {
			return nil, ErrOfferedBookNotOwned
		}
		if !offered.Requestable() {
			return nil, ErrBookUnavailable
		}
	}

	req, err := domain.NewExchangeRequest(
		requesterID, book.ID, book.OwnerID, in.Kind, in.OfferedBookID)
	if err != nil {
		return nil, err
	}

	if err := s.requests.Create(ctx, req); err != nil {
		if errors.Is(err, store.ErrDuplicatePendingRequest) {
			return nil, ErrDuplicatePendingRequest
		}
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.logger.Info("transfer requested",
		slog.String("request_id", req.ID.String()),
		slog.String("kind", string(req.Kind)),
		slog.String("requester_id", requesterID.String()),
		slog.String("book_id", book.ID.String()))

	return req, nil
}

// Transition implements Service.Transition.
func (s *serviceImpl) Transition(
	ctx context.Context,
	requestID, actorID uuid.UUID,
	target domain.RequestStatus,
) (*domain.ExchangeRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	actor := req.ActorCapability(actorID)
	if actor == 0 {
		return nil, ErrForbidden
	}
	if !domain.CanTransition(req.Status, target) {
		return nil, NewInvalidTransitionError(req.Status, target)
	}
	if !domain.TransitionAllowedFor(req.Status, target, actor) {
		return nil, ErrForbidden
	}

	if err := s.applyTransition(ctx, req, target); err != nil {
		return nil, err
	}

	s.logger.Info("request transitioned",
		slog.String("request_id", req.ID.String()),
		slog.String("status", string(req.Status)),
		slog.String("actor_id", actorID.String()))

	return req, nil
}

// ForceCancel implements Service.ForceCancel.
func (s *serviceImpl) ForceCancel(
	ctx context.Context,
	requestID uuid.UUID,
) (*domain.ExchangeRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if domain.IsTerminalStatus(req.Status) {
		return nil, NewInvalidTransitionError(req.Status, domain.RequestStatusCancelled)
	}

	if err := s.applyTransition(ctx, req, domain.RequestStatusCancelled); err != nil {
		return nil, err
	}

	s.logger.Info("request force-cancelled",
		slog.String("request_id", req.ID.String()))

	return req, nil
}

// applyTransition commits the status change and its book side effects in one
// transaction, then folds the result into req. The conditional update on the
// request's current status serializes concurrent transitions: the loser sees
// ErrStatusConflict and reports the winner's status.
func (s *serviceImpl) applyTransition(
	ctx context.Context,
	req *domain.ExchangeRequest,
	target domain.RequestStatus,
) error {
	from := req.Status

	var completedAt *time.Time
	if target == domain.RequestStatusCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txRequests := s.requests.WithTx(tx)
		txBooks := s.books.WithTx(tx)

		if err := txRequests.UpdateStatus(ctx, req.ID, from, target, completedAt); err != nil {
			switch {
			case errors.Is(err, store.ErrStatusConflict):
				current, gerr := txRequests.GetByID(ctx, req.ID)
				if gerr != nil {
					return NewInvalidTransitionError(from, target)
				}
				return NewInvalidTransitionError(current.Status, target)
			case errors.Is(err, store.ErrRequestNotFound):
				return ErrRequestNotFound
			default:
				return fmt.Errorf("failed to update request status: %w", err)
			}
		}

		switch {
		case target == domain.RequestStatusAccepted:
			err := txBooks.SetStatus(ctx, req.BookID,
				domain.BookStatusAvailable, domain.BookStatusNotAvailable)
			if err != nil {
				if errors.Is(err, store.ErrStatusConflict) {
					return ErrBookUnavailable
				}
				return fmt.Errorf("failed to mark book unavailable: %w", err)
			}

		case target == domain.RequestStatusCompleted:
			if err := txBooks.TransferOwnership(ctx, req.BookID, req.RequesterID); err != nil {
				return fmt.Errorf("failed to transfer book ownership: %w", err)
			}
			if req.Kind == domain.RequestKindExchange && req.OfferedBookID != nil {
				err := txBooks.TransferOwnership(ctx, *req.OfferedBookID, req.OwnerID)
				if err != nil {
					return fmt.Errorf("failed to transfer offered book ownership: %w", err)
				}
			}

		case target == domain.RequestStatusCancelled && from == domain.RequestStatusAccepted:
			err := txBooks.SetStatus(ctx, req.BookID,
				domain.BookStatusNotAvailable, domain.BookStatusAvailable)
			if err != nil && !errors.Is(err, store.ErrStatusConflict) {
				return fmt.Errorf("failed to restore book availability: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	req.Status = target
	req.CompletedAt = completedAt
	req.UpdatedAt = time.Now().UTC()
	return nil
}

// Rate implements Service.Rate.
func (s *serviceImpl) Rate(
	ctx context.Context,
	requestID, raterID uuid.UUID,
	rating int,
	review string,
) (*domain.ExchangeRequest, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	side, ok := req.SideOf(raterID)
	if !ok {
		return nil, ErrForbidden
	}
	if req.Status != domain.RequestStatusCompleted {
		return nil, ErrNotCompleted
	}
	if req.RatingBySide(side) != nil {
		return nil, ErrAlreadyRated
	}

	// The requester rates the owner and vice versa.
	counterpartyID := req.OwnerID
	if side == domain.SideOwner {
		counterpartyID = req.RequesterID
	}

	sideRating := domain.SideRating{
		Rating:  rating,
		Review:  review,
		RatedAt: time.Now().UTC(),
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txRequests := s.requests.WithTx(tx)
		txUsers := s.users.WithTx(tx)

		if err := txRequests.SetSideRating(ctx, req.ID, side, sideRating); err != nil {
			switch {
			case errors.Is(err, store.ErrAlreadyRated):
				return ErrAlreadyRated
			case errors.Is(err, store.ErrRequestNotFound):
				return ErrRequestNotFound
			default:
				return fmt.Errorf("failed to record rating: %w", err)
			}
		}

		counterparty, err := txUsers.GetByID(ctx, counterpartyID)
		if err != nil {
			return fmt.Errorf("failed to load counterparty: %w", err)
		}
		if err := counterparty.ApplyRating(rating); err != nil {
			return err
		}
		if err := txUsers.Update(ctx, counterparty); err != nil {
			return fmt.Errorf("failed to update counterparty rating: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rating recorded",
		slog.String("request_id", req.ID.String()),
		slog.String("side", string(side)),
		slog.Int("rating", rating))

	switch side {
	case domain.SideRequester:
		req.RequesterRating = &sideRating
	case domain.SideOwner:
		req.OwnerRating = &sideRating
	}
	return req, nil
}

// Delete implements Service.Delete.
func (s *serviceImpl) Delete(ctx context.Context, requestID, actorID uuid.UUID) error {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}

	if req.RequesterID != actorID {
		return ErrForbidden
	}
	if req.Status != domain.RequestStatusCancelled &&
		req.Status != domain.RequestStatusRejected {
		return ErrNotDeletable
	}

	if err := s.requests.Delete(ctx, requestID); err != nil {
		if errors.Is(err, store.ErrRequestNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to delete request: %w", err)
	}

	s.logger.Info("request deleted",
		slog.String("request_id", requestID.String()),
		slog.String("actor_id", actorID.String()))

	return nil
}

// Get implements Service.Get.
func (s *serviceImpl) Get(
	ctx context.Context,
	requestID, actorID uuid.UUID,
) (*domain.ExchangeRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	// Non-parties get a not-found rather than a forbidden so request
	// existence cannot be probed.
	if !req.IsParty(actorID) {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// ListForUser implements Service.ListForUser.
func (s *serviceImpl) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	direction store.RequestDirection,
	filter store.RequestFilter,
) ([]*domain.ExchangeRequest, error) {
	return s.requests.ListByParty(ctx, userID, direction, filter)
}

// ListAll implements Service.ListAll.
func (s *serviceImpl) ListAll(
	ctx context.Context,
	filter store.RequestFilter,
) ([]*domain.ExchangeRequest, error) {
	return s.requests.List(ctx, filter)
}

func (s *serviceImpl) getRequest(
	ctx context.Context,
	requestID uuid.UUID,
) (*domain.ExchangeRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return req, nil
}
