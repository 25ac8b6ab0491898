package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookswap/bookswap-api/internal/api/shared"
	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/mocks"
	"github.com/bookswap/bookswap-api/internal/service/auth"
)

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()

	newHandler := func(jwtService *mocks.MockJWTService) (http.Handler, *bool) {
		called := false
		m := NewAuthMiddleware(jwtService)
		h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			gotID, ok := GetUserID(r)
			assert.True(t, ok)
			assert.Equal(t, userID, gotID)
			assert.Equal(t, domain.RoleAdmin, shared.GetUserRole(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))
		return h, &called
	}

	t.Run("passes valid bearer tokens through with user context", func(t *testing.T) {
		jwtService := mocks.NewMockJWTService().WithUser(userID, domain.RoleAdmin)
		handler, called := newHandler(jwtService)

		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		req.Header.Set("Authorization", "Bearer mock-jwt-token")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, *called)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		handler, called := newHandler(mocks.NewMockJWTService())

		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
	})

	t.Run("rejects a malformed header", func(t *testing.T) {
		handler, called := newHandler(mocks.NewMockJWTService())

		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		req.Header.Set("Authorization", "Token abc")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
	})

	t.Run("maps token validation failures to 401", func(t *testing.T) {
		for _, tokenErr := range []error{
			auth.ErrInvalidToken,
			auth.ErrExpiredToken,
			auth.ErrWrongTokenType,
		} {
			jwtService := mocks.NewMockJWTService()
			jwtService.ValidationError = tokenErr
			handler, called := newHandler(jwtService)

			req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
			req.Header.Set("Authorization", "Bearer bad-token")
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, http.StatusUnauthorized, rr.Code, "error: %v", tokenErr)
			assert.False(t, *called)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthMiddleware(mocks.NewMockJWTService())

	newHandler := func() (http.Handler, *bool) {
		called := false
		h := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))
		return h, &called
	}

	t.Run("admits admins", func(t *testing.T) {
		handler, called := newHandler()

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		ctx := context.WithValue(req.Context(), shared.UserRoleContextKey, domain.RoleAdmin)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, *called)
	})

	t.Run("refuses regular users", func(t *testing.T) {
		handler, called := newHandler()

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		ctx := context.WithValue(req.Context(), shared.UserRoleContextKey, domain.RoleUser)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(ctx))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.False(t, *called)
	})

	t.Run("refuses requests without a role in context", func(t *testing.T) {
		handler, called := newHandler()

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.False(t, *called)
	})
}
