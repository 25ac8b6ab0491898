package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookswap/bookswap-api/internal/api/middleware"
	"github.com/bookswap/bookswap-api/internal/api/shared"
	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/service/exchange"
	"github.com/bookswap/bookswap-api/internal/store"
)

// RequestHandler handles the transfer-request lifecycle endpoints.
type RequestHandler struct {
	exchangeService exchange.Service
}

// NewRequestHandler creates a new RequestHandler with the given dependencies.
func NewRequestHandler(exchangeService exchange.Service) *RequestHandler {
	return &RequestHandler{exchangeService: exchangeService}
}

// urlParamUUID parses a UUID path parameter. It writes a 400 response and
// returns false on failure.
func urlParamUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// actorID extracts the authenticated user ID. It writes a 401 response and
// returns false when the middleware did not run.
func actorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// Create handles POST /api/requests.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req CreateTransferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	kind := domain.RequestKind(req.Type)
	offered := req.OfferedBook()
	if kind == domain.RequestKindExchange && offered == nil {
		shared.RespondWithError(
			w, r, http.StatusBadRequest, "Exchange requests require an offered book")
		return
	}

	created, err := h.exchangeService.RequestTransfer(r.Context(), userID, exchange.TransferInput{
		BookID:        req.Book,
		Kind:          kind,
		OfferedBookID: offered,
	})
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, created)
}

// Get handles GET /api/requests/{id}.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	requestID, ok := urlParamUUID(w, r, "id")
	if !ok {
		return
	}

	req, err := h.exchangeService.Get(r.Context(), requestID, userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, req)
}

// List handles GET /api/requests?direction=incoming|outgoing|all&status=...
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	direction := store.RequestDirection(r.URL.Query().Get("direction"))
	switch direction {
	case store.DirectionIncoming, store.DirectionOutgoing, store.DirectionAll:
	case "":
		direction = store.DirectionAll
	default:
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid direction")
		return
	}

	filter, ok := requestFilterFromQuery(w, r)
	if !ok {
		return
	}

	requests, err := h.exchangeService.ListForUser(r.Context(), userID, direction, filter)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, requests)
}

// UpdateStatus handles PUT /api/requests/{id}.
func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	requestID, ok := urlParamUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRequestStatus
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	updated, err := h.exchangeService.Transition(
		r.Context(), requestID, userID, domain.RequestStatus(req.Status))
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// Rate handles POST /api/requests/{id}/rate.
func (h *RequestHandler) Rate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	requestID, ok := urlParamUUID(w, r, "id")
	if !ok {
		return
	}

	var req RateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	updated, err := h.exchangeService.Rate(r.Context(), requestID, userID, req.Rating, req.Review)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /api/requests/{id}.
func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	requestID, ok := urlParamUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.exchangeService.Delete(r.Context(), requestID, userID); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
