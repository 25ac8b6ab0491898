package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookswap/bookswap-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// UpdateUserRequest defines the payload for updating the caller's profile.
// All fields are optional; absent fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,min=1,max=100"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	RatingAverage float64   `json:"rating_average"`
	RatingCount   int       `json:"rating_count"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewUserResponse projects a domain user onto the wire shape.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          string(u.Role),
		RatingAverage: u.RatingAverage,
		RatingCount:   u.RatingCount,
		Active:        u.Active,
		CreatedAt:     u.CreatedAt,
	}
}

// CreateBookRequest defines the payload for listing a new book.
type CreateBookRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=255"`
	Author      string `json:"author"      validate:"required,min=1,max=255"`
	Genre       string `json:"genre"       validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// UpdateBookRequest defines the payload for editing a book. The owner may
// also relist the book by setting status back to Available.
type UpdateBookRequest struct {
	Title       *string `json:"title,omitempty"       validate:"omitempty,min=1,max=255"`
	Author      *string `json:"author,omitempty"      validate:"omitempty,min=1,max=255"`
	Genre       *string `json:"genre,omitempty"       validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *string `json:"status,omitempty"      validate:"omitempty,oneof='Available' 'Not Available'"`
}

// CreateTransferRequest defines the payload for opening a transfer request.
// OfferedBooks is array-shaped on the wire but a request carries at most one
// offered book.
type CreateTransferRequest struct {
	Book         uuid.UUID   `json:"book"                  validate:"required"`
	Type         string      `json:"type"                  validate:"required,oneof=free exchange"`
	OfferedBooks []uuid.UUID `json:"offeredBooks,omitempty" validate:"omitempty,max=1"`
}

// OfferedBook returns the offered book ID, or nil when none was sent.
func (r CreateTransferRequest) OfferedBook() *uuid.UUID {
	if len(r.OfferedBooks) == 0 {
		return nil
	}
	return &r.OfferedBooks[0]
}

// UpdateRequestStatus defines the payload for driving a status transition.
type UpdateRequestStatus struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected completed cancelled"`
}

// RateRequest defines the payload for rating a completed exchange.
type RateRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"omitempty,max=2000"`
}
