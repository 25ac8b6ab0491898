package api

import (
	"net/http"
	"time"

	"github.com/bookswap/bookswap-api/internal/api/shared"
	"github.com/bookswap/bookswap-api/internal/service/exchange"
	"github.com/bookswap/bookswap-api/internal/store"
)

// AdminHandler handles the moderation endpoints. All of its routes sit
// behind the admin role gate.
type AdminHandler struct {
	userStore       store.UserStore
	bookStore       store.BookStore
	requestStore    store.RequestStore
	exchangeService exchange.Service
}

// NewAdminHandler creates a new AdminHandler with the given dependencies.
func NewAdminHandler(
	userStore store.UserStore,
	bookStore store.BookStore,
	requestStore store.RequestStore,
	exchangeService exchange.Service,
) *AdminHandler {
	return &AdminHandler{
		userStore:       userStore,
		bookStore:       bookStore,
		requestStore:    requestStore,
		exchangeService: exchangeService,
	}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := paginationFromQuery(w, r)
	if !ok {
		return
	}

	users, err := h.userStore.List(r.Context(), limit, offset)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, NewUserResponse(u))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// DeactivateUser handles PUT /api/admin/users/{id}/deactivate.
func (h *AdminHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamUUID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	user.Active = false
	user.UpdatedAt = time.Now().UTC()
	if err := h.userStore.Update(r.Context(), user); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// ListRequests handles GET /api/admin/requests.
func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter, ok := requestFilterFromQuery(w, r)
	if !ok {
		return
	}

	requests, err := h.exchangeService.ListAll(r.Context(), filter)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, requests)
}

// CancelRequest handles PUT /api/admin/requests/{id}/cancel: a force-cancel
// of any non-terminal request, restoring book availability when needed.
func (h *AdminHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := urlParamUUID(w, r, "id")
	if !ok {
		return
	}

	req, err := h.exchangeService.ForceCancel(r.Context(), requestID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, req)
}

// DeleteBook handles DELETE /api/admin/books/{id}: a soft delete of any
// book, refused while a pending or accepted request references it.
func (h *AdminHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := urlParamUUID(w, r, "id")
	if !ok {
		return
	}

	book, err := h.bookStore.GetByID(r.Context(), bookID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

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

	book.Active = false
	book.UpdatedAt = time.Now().UTC()
	if err := h.bookStore.Update(r.Context(), book); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
