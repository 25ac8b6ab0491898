package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bookswap/bookswap-api/internal/api/shared"
	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/service/auth"
	"github.com/bookswap/bookswap-api/internal/service/exchange"
	"github.com/bookswap/bookswap-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, exchange.ErrForbidden):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, exchange.ErrRequestNotFound),
		errors.Is(err, exchange.ErrBookNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// Invalid-state errors: transition table misses, duplicate pending
	// requests, unavailable books, premature or repeated ratings.
	case errors.Is(err, exchange.ErrInvalidState):
		return http.StatusBadRequest

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrMissingOfferedBook):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	// The invalid-transition error carries both statuses; its message is
	// already free of internal detail and worth surfacing verbatim.
	var invalidTransition *exchange.InvalidTransitionError
	if errors.As(err, &invalidTransition) {
		return invalidTransition.Error()
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	// Authorization errors
	case errors.Is(err, exchange.ErrForbidden):
		return "You are not allowed to perform this action"

	// Not found errors
	case errors.Is(err, exchange.ErrRequestNotFound),
		errors.Is(err, store.ErrRequestNotFound):
		return "Request not found"

	case errors.Is(err, exchange.ErrBookNotFound),
		errors.Is(err, store.ErrBookNotFound):
		return "Book not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	// Invalid-state errors
	case errors.Is(err, exchange.ErrOwnBook):
		return "You cannot request your own book"

	case errors.Is(err, exchange.ErrBookUnavailable):
		return "Book is not available"

	case errors.Is(err, exchange.ErrOfferedBookNotOwned):
		return "Offered book is not owned by you"

	case errors.Is(err, exchange.ErrDuplicatePendingRequest):
		return "You already have a pending request for this book"

	case errors.Is(err, exchange.ErrNotCompleted):
		return "Request must be completed before rating"

	case errors.Is(err, exchange.ErrAlreadyRated):
		return "You have already rated this exchange"

	case errors.Is(err, exchange.ErrNotDeletable):
		return "Only cancelled or rejected requests can be deleted"

	case errors.Is(err, domain.ErrInvalidRating):
		return "Rating must be between 1 and 5"

	case errors.Is(err, domain.ErrMissingOfferedBook):
		return "Exchange requests require an offered book"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// RespondWithServiceError maps a service error to its status code and safe
// message and writes the standard error payload.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'LoginRequest.Email' Error:Field validation for
	// 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}
