package api

import (
	"net/http"
	"strconv"

	"github.com/bookswap/bookswap-api/internal/api/shared"
	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/store"
)

// Pagination bounds shared by all list endpoints.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// paginationFromQuery parses limit and offset query parameters, applying the
// defaults and caps. It writes a 400 response and returns false on malformed
// values.
func paginationFromQuery(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit = defaultPageSize
	offset = 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return 0, 0, false
		}
		if v > maxPageSize {
			v = maxPageSize
		}
		limit = v
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid offset")
			return 0, 0, false
		}
		offset = v
	}

	return limit, offset, true
}

// requestFilterFromQuery parses the shared request-list filters. It writes a
// 400 response and returns false on malformed values.
func requestFilterFromQuery(w http.ResponseWriter, r *http.Request) (store.RequestFilter, bool) {
	limit, offset, ok := paginationFromQuery(w, r)
	if !ok {
		return store.RequestFilter{}, false
	}

	filter := store.RequestFilter{Limit: limit, Offset: offset}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.RequestStatus(raw)
		switch status {
		case domain.RequestStatusPending, domain.RequestStatusAccepted,
			domain.RequestStatusRejected, domain.RequestStatusCompleted,
			domain.RequestStatusCancelled:
			filter.Status = status
		default:
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status filter")
			return store.RequestFilter{}, false
		}
	}

	return filter, true
}
