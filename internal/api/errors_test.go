package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookswap/bookswap-api/internal/api/shared"
	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/service/auth"
	"github.com/bookswap/bookswap-api/internal/service/exchange"
	"github.com/bookswap/bookswap-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid refresh token", auth.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"forbidden", exchange.ErrForbidden, http.StatusForbidden},
		{"request not found", exchange.ErrRequestNotFound, http.StatusNotFound},
		{"book not found", exchange.ErrBookNotFound, http.StatusNotFound},
		{"store not found", store.ErrUserNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"own book", exchange.ErrOwnBook, http.StatusBadRequest},
		{"book unavailable", exchange.ErrBookUnavailable, http.StatusBadRequest},
		{"duplicate pending", exchange.ErrDuplicatePendingRequest, http.StatusBadRequest},
		{"not completed", exchange.ErrNotCompleted, http.StatusBadRequest},
		{"already rated", exchange.ErrAlreadyRated, http.StatusBadRequest},
		{"not deletable", exchange.ErrNotDeletable, http.StatusBadRequest},
		{
			"invalid transition",
			exchange.NewInvalidTransitionError(
				domain.RequestStatusPending, domain.RequestStatusCompleted),
			http.StatusBadRequest,
		},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"unknown error", errors.New("database exploded"), http.StatusInternalServerError},
		{
			"wrapped error keeps its mapping",
			fmt.Errorf("transition failed: %w", exchange.ErrForbidden),
			http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Run("surfaces the transition detail", func(t *testing.T) {
		err := fmt.Errorf("transition failed: %w", exchange.NewInvalidTransitionError(
			domain.RequestStatusCancelled, domain.RequestStatusAccepted))
		assert.Equal(t, `invalid transition from "cancelled" to "accepted"`,
			GetSafeErrorMessage(err))
	})

	t.Run("never leaks internal detail", func(t *testing.T) {
		err := errors.New("pq: connection refused host=10.0.0.5 password=hunter2")
		msg := GetSafeErrorMessage(err)
		assert.Equal(t, "An unexpected error occurred", msg)
	})

	t.Run("handles nil", func(t *testing.T) {
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})
}

func TestSanitizeValidationError(t *testing.T) {
	t.Run("names the failing field and rule", func(t *testing.T) {
		err := shared.ValidateRequest(RateRequest{Rating: 9})
		assert.Equal(t, "Invalid Rating: too long", SanitizeValidationError(err))
	})

	t.Run("falls back to a generic message", func(t *testing.T) {
		assert.Equal(t, "Validation error",
			SanitizeValidationError(errors.New("something else")))
	})
}
