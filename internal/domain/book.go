package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookStatus represents the availability of a book for exchange.
type BookStatus string

// Possible book status values.
const (
	BookStatusAvailable    BookStatus = "Available"
	BookStatusNotAvailable BookStatus = "Not Available"
)

// Common validation errors for Book.
var (
	ErrEmptyBookID      = errors.New("book ID cannot be empty")
	ErrEmptyBookOwnerID = errors.New("book owner ID cannot be empty")
	ErrEmptyBookTitle   = errors.New("book title cannot be empty")
	ErrEmptyBookAuthor  = errors.New("book author cannot be empty")
)

// Book represents a physical book listed by its owner for exchange or
// free transfer. OwnerID changes when a request referencing the book
// completes; Status tracks whether the book can be requested.
type Book struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Genre       string     `json:"genre,omitempty"`
	Description string     `json:"description,omitempty"`
	Status      BookStatus `json:"status"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewBook creates a new Book owned by the given user.
// It generates a new UUID for the book ID, marks the book available,
// and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewBook(ownerID uuid.UUID, title, author, genre, description string) (*Book, error) {
	book := &Book{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(title),
		Author:      strings.TrimSpace(author),
		Genre:       strings.TrimSpace(genre),
		Description: strings.TrimSpace(description),
		Status:      BookStatusAvailable,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}

	return book, nil
}

// Validate checks if the Book has valid data.
// Returns an error if any field fails validation.
func (b *Book) Validate() error {
	if b.ID == uuid.Nil {
		return ErrEmptyBookID
	}

	if b.OwnerID == uuid.Nil {
		return ErrEmptyBookOwnerID
	}

	if b.Title == "" {
		return ErrEmptyBookTitle
	}

	if b.Author == "" {
		return ErrEmptyBookAuthor
	}

	if !isValidBookStatus(b.Status) {
		return ErrInvalidBookStatus
	}

	return nil
}

// Requestable reports whether the book can be the target of a new
// transfer request: it must be active and currently available.
func (b *Book) Requestable() bool {
	return b.Active && b.Status == BookStatusAvailable
}

func isValidBookStatus(status BookStatus) bool {
	switch status {
	case BookStatusAvailable, BookStatusNotAvailable:
		return true
	default:
		return false
	}
}
