package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/mocks"
)

func strPtr(s string) *string { return &s }

func TestCreateBook(t *testing.T) {
	ownerID := uuid.New()

	t.Run("lists a new book as available", func(t *testing.T) {
		bookStore := mocks.NewMockBookStore()
		handler := NewBookHandler(bookStore, mocks.NewMockRequestStore())

		req := asUser(newJSONRequest(t, http.MethodPost, "/api/books", CreateBookRequest{
			Title:  "Piranesi",
			Author: "Susanna Clarke",
			Genre:  "Fantasy",
		}), ownerID)
		rr := httptest.NewRecorder()
		handler.Create(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp domain.Book
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, ownerID, resp.OwnerID)
		assert.Equal(t, domain.BookStatusAvailable, resp.Status)
		assert.True(t, resp.Active)

		stored, err := bookStore.GetByID(req.Context(), resp.ID)
		require.NoError(t, err)
		assert.Equal(t, "Piranesi", stored.Title)
	})

	t.Run("rejects a book without a title", func(t *testing.T) {
		handler := NewBookHandler(mocks.NewMockBookStore(), mocks.NewMockRequestStore())

		req := asUser(newJSONRequest(t, http.MethodPost, "/api/books", CreateBookRequest{
			Author: "Susanna Clarke",
		}), ownerID)
		rr := httptest.NewRecorder()
		handler.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListBooks(t *testing.T) {
	ownerID := uuid.New()
	available := testBook(t, ownerID)
	unavailable := testBook(t, ownerID)
	unavailable.Status = domain.BookStatusNotAvailable
	otherOwners := testBook(t, uuid.New())

	bookStore := mocks.NewMockBookStore().
		AddBook(available).
		AddBook(unavailable).
		AddBook(otherOwners)

	t.Run("lists available books", func(t *testing.T) {
		handler := NewBookHandler(bookStore, mocks.NewMockRequestStore())

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/books", nil), ownerID)
		rr := httptest.NewRecorder()
		handler.List(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp []*domain.Book
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Len(t, resp, 2)
		for _, b := range resp {
			assert.Equal(t, domain.BookStatusAvailable, b.Status)
		}
	})

	t.Run("lists the caller's own books regardless of status", func(t *testing.T) {
		handler := NewBookHandler(bookStore, mocks.NewMockRequestStore())

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/books?mine=true", nil), ownerID)
		rr := httptest.NewRecorder()
		handler.List(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp []*domain.Book
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Len(t, resp, 2)
		for _, b := range resp {
			assert.Equal(t, ownerID, b.OwnerID)
		}
	})

	t.Run("rejects a malformed limit", func(t *testing.T) {
		handler := NewBookHandler(bookStore, mocks.NewMockRequestStore())

		req := asUser(httptest.NewRequest(http.MethodGet, "/api/books?limit=ten", nil), ownerID)
		rr := httptest.NewRecorder()
		handler.List(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateBook(t *testing.T) {
	ownerID := uuid.New()

	newBookURL := func(b *domain.Book) string { return "/api/books/" + b.ID.String() }

	t.Run("edits metadata", func(t *testing.T) {
		book := testBook(t, ownerID)
		handler := NewBookHandler(
			mocks.NewMockBookStore().AddBook(book), mocks.NewMockRequestStore())

		req := asUser(withURLParam(
			newJSONRequest(t, http.MethodPut, newBookURL(book), UpdateBookRequest{
				Title: strPtr("The Left Hand of Darkness"),
			}), "id", book.ID.String()), ownerID)
		rr := httptest.NewRecorder()
		handler.Update(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp domain.Book
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "The Left Hand of Darkness", resp.Title)
	})

	t.Run("forbids edits by non-owners", func(t *testing.T) {
		book := testBook(t, ownerID)
		handler := NewBookHandler(
			mocks.NewMockBookStore().AddBook(book), mocks.NewMockRequestStore())

		req := asUser(withURLParam(
			newJSONRequest(t, http.MethodPut, newBookURL(book), UpdateBookRequest{
				Title: strPtr("Hijacked"),
			}), "id", book.ID.String()), uuid.New())
		rr := httptest.NewRecorder()
		handler.Update(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("relists a book once no open request references it", func(t *testing.T) {
		book := testBook(t, ownerID)
		book.Status = domain.BookStatusNotAvailable
		handler := NewBookHandler(
			mocks.NewMockBookStore().AddBook(book), mocks.NewMockRequestStore())

		req := asUser(withURLParam(
			newJSONRequest(t, http.MethodPut, newBookURL(book), UpdateBookRequest{
				Status: strPtr("Available"),
			}), "id", book.ID.String()), ownerID)
		rr := httptest.NewRecorder()
		handler.Update(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp domain.Book
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, domain.BookStatusAvailable, resp.Status)
	})

	t.Run("refuses to relist while an open request references the book", func(t *testing.T) {
		book := testBook(t, ownerID)
		book.Status = domain.BookStatusNotAvailable
		openRequest := testRequest(t, uuid.New(), book.ID, ownerID)
		openRequest.Status = domain.RequestStatusAccepted
		handler := NewBookHandler(
			mocks.NewMockBookStore().AddBook(book),
			mocks.NewMockRequestStore().AddRequest(openRequest))

		req := asUser(withURLParam(
			newJSONRequest(t, http.MethodPut, newBookURL(book), UpdateBookRequest{
				Status: strPtr("Available"),
			}), "id", book.ID.String()), ownerID)
		rr := httptest.NewRecorder()
		handler.Update(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Book is referenced by an open request",
			decodeErrorResponse(t, rr).Message)
	})

	t.Run("rejects an unknown status value", func(t *testing.T) {
		book := testBook(t, ownerID)
		handler := NewBookHandler(
			mocks.NewMockBookStore().AddBook(book), mocks.NewMockRequestStore())

		req := asUser(withURLParam(
			newJSONRequest(t, http.MethodPut, newBookURL(book), UpdateBookRequest{
				Status: strPtr("Lost"),
			}), "id", book.ID.String()), ownerID)
		rr := httptest.NewRecorder()
		handler.Update(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDeleteBook(t *testing.T) {
	ownerID := uuid.New()

	t.Run("soft deletes an unreferenced book", func(t *testing.T) {
		book := testBook(t, ownerID)
		bookStore := mocks.NewMockBookStore().AddBook(book)
		handler := NewBookHandler(bookStore, mocks.NewMockRequestStore())

		req := asUser(withURLParam(
			httptest.NewRequest(http.MethodDelete, "/api/books/"+book.ID.String(), nil),
			"id", book.ID.String()), ownerID)
		rr := httptest.NewRecorder()
		handler.Delete(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, bookStore.Books[book.ID].Active)
	})

	t.Run("refuses to delete a book with an open request", func(t *testing.T) {
		book := testBook(t, ownerID)
		openRequest := testRequest(t, uuid.New(), book.ID, ownerID)
		bookStore := mocks.NewMockBookStore().AddBook(book)
		handler := NewBookHandler(
			bookStore, mocks.NewMockRequestStore().AddRequest(openRequest))

		req := asUser(withURLParam(
			httptest.NewRequest(http.MethodDelete, "/api/books/"+book.ID.String(), nil),
			"id", book.ID.String()), ownerID)
		rr := httptest.NewRecorder()
		handler.Delete(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.True(t, bookStore.Books[book.ID].Active)
	})

	t.Run("forbids deletes by non-owners", func(t *testing.T) {
		book := testBook(t, ownerID)
		handler := NewBookHandler(
			mocks.NewMockBookStore().AddBook(book), mocks.NewMockRequestStore())

		req := asUser(withURLParam(
			httptest.NewRequest(http.MethodDelete, "/api/books/"+book.ID.String(), nil),
			"id", book.ID.String()), uuid.New())
		rr := httptest.NewRecorder()
		handler.Delete(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("returns 404 for an unknown book", func(t *testing.T) {
		handler := NewBookHandler(mocks.NewMockBookStore(), mocks.NewMockRequestStore())

		id := uuid.New()
		req := asUser(withURLParam(
			httptest.NewRequest(http.MethodDelete, "/api/books/"+id.String(), nil),
			"id", id.String()), ownerID)
		rr := httptest.NewRecorder()
		handler.Delete(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
