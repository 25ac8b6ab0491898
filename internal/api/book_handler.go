package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bookswap/bookswap-api/internal/api/shared"
	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/store"
)

// BookHandler handles the book listing endpoints.
type BookHandler struct {
	bookStore    store.BookStore
	requestStore store.RequestStore
}

// NewBookHandler creates a new BookHandler with the given dependencies.
func NewBookHandler(bookStore store.BookStore, requestStore store.RequestStore) *BookHandler {
	return &BookHandler{
		bookStore:    bookStore,
		requestStore: requestStore,
	}
}

// Create handles POST /api/books.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req CreateBookRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	book, err := domain.NewBook(userID, req.Title, req.Author, req.Genre, req.Description)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid book data")
		return
	}

	if err := h.bookStore.Create(r.Context(), book); err != nil {
		slog.Error("failed to create book", "error", err, "owner_id", userID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create book")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, book)
}

// List handles GET /api/books. With ?mine=true it lists the caller's books
// (regardless of availability); otherwise it lists available books.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("mine") == "true" {
		books, err := h.bookStore.ListByOwner(r.Context(), userID)
		if err != nil {
			RespondWithServiceError(w, r, err)
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, books)
		return
	}

	limit, offset, ok := paginationFromQuery(w, r)
	if !ok {
		return
	}

	books, err := h.bookStore.ListAvailable(r.Context(), limit, offset)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, books)
}

// Get handles GET /api/books/{id}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorID(w, r); !ok {
		return
	}
	bookID, ok := urlParamUUID(w, r, "id")
	if !ok {
		return
	}

	book, err := h.bookStore.GetByID(r.Context(), bookID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, book)
}

// Update handles PUT /api/books/{id}. Only the owner may edit. Relisting the
// book (status back to Available) is refused while a pending or accepted
// request references it.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookID, ok := urlParamUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateBookRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	book, err := h.bookStore.GetByID(r.Context(), bookID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	if book.OwnerID != userID {
		shared.RespondWithError(w, r, http.StatusForbidden, "You do not own this book")
		return
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Status != nil {
		target := domain.BookStatus(*req.Status)
		if target != book.Status {
			open, err := h.requestStore.HasOpenForBook(r.Context(), book.ID)
			if err != nil {
				RespondWithServiceError(w, r, err)
				return
			}
			if open {
				shared.RespondWithError(w, r, http.StatusBadRequest,
					"Book is referenced by an open request")
				return
			}
			book.Status = target
		}
	}
	book.UpdatedAt = time.Now().UTC()

	if err := book.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid book data")
		return
	}

	if err := h.bookStore.Update(r.Context(), book); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, book)
}

// Delete handles DELETE /api/books/{id}: a soft delete via the active flag,
// refused while a pending or accepted request references the book.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookID, ok := urlParamUUID(w, r, "id")
	if !ok {
		return
	}

	book, err := h.bookStore.GetByID(r.Context(), bookID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	if book.OwnerID != userID {
		shared.RespondWithError(w, r, http.StatusForbidden, "You do not own this book")
		return
	}

	if err := h.deactivate(w, r, book); err != nil {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

// deactivate soft-deletes a book after checking the open-request guard.
// Errors are written to the response; the returned error only signals the
// caller to stop.
func (h *BookHandler) deactivate(
	w http.ResponseWriter,
	r *http.Request,
	book *domain.Book,
) error {
	open, err := h.requestStore.HasOpenForBook(r.Context(), book.ID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return err
	}
	if open {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Book is referenced by an open request")
		return errors.New("book has open requests")
	}

	book.Active = false
	book.UpdatedAt = time.Now().UTC()
	if err := h.bookStore.Update(r.Context(), book); err != nil {
		RespondWithServiceError(w, r, err)
		return err
	}
	return nil
}
