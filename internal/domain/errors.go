package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrInvalidRole is returned when a user role is not one of the known roles.
	ErrInvalidRole = errors.New("invalid user role")

	// ErrInvalidBookStatus is returned when a book status is not a valid value.
	ErrInvalidBookStatus = errors.New("invalid book status")

	// ErrInvalidRequestKind is returned when a request kind is not a valid value.
	ErrInvalidRequestKind = errors.New("invalid request kind")

	// ErrInvalidRequestStatus is returned when a request status is not a valid value.
	ErrInvalidRequestStatus = errors.New("invalid request status")

	// ErrInvalidRating is returned when a rating is outside the 1-5 range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
