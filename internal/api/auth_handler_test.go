package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookswap/bookswap-api/internal/config"
	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/mocks"
	"github.com/bookswap/bookswap-api/internal/service/auth"
)

func newAuthHandler(
	userStore *mocks.MockUserStore,
	jwtService *mocks.MockJWTService,
	verifier *mocks.MockPasswordVerifier,
) *AuthHandler {
	return NewAuthHandler(
		userStore,
		jwtService,
		mocks.NewMockPasswordHasher(),
		verifier,
		config.AuthConfig{
			JWTSecret:                   strings.Repeat("x", 32),
			TokenLifetimeMinutes:        60,
			RefreshTokenLifetimeMinutes: 10080,
		},
	)
}

func TestRegister(t *testing.T) {
	t.Run("creates user and returns token pair", func(t *testing.T) {
		userStore := mocks.NewMockUserStore()
		handler := newAuthHandler(userStore, mocks.NewMockJWTService(), mocks.NewMockPasswordVerifier())

		req := newJSONRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
			Password: "password123",
		})
		rr := httptest.NewRecorder()
		handler.Register(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.NotEqual(t, "", resp.AccessToken)
		assert.NotEqual(t, "", resp.RefreshToken)
		assert.NotEqual(t, "", resp.ExpiresAt)

		stored, err := userStore.GetByEmail(req.Context(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, resp.UserID, stored.ID)
		assert.Equal(t, domain.RoleUser, stored.Role)
		assert.Equal(t, "hashed:password123", stored.HashedPassword)
		assert.Empty(t, stored.Password)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		userStore := mocks.NewMockUserStore().AddUser(testUser(t, "ada@example.com"))
		handler := newAuthHandler(userStore, mocks.NewMockJWTService(), mocks.NewMockPasswordVerifier())

		req := newJSONRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
			Password: "password123",
		})
		rr := httptest.NewRecorder()
		handler.Register(rr, req)

		require.Equal(t, http.StatusConflict, rr.Code)
		resp := decodeErrorResponse(t, rr)
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "Email already exists", resp.Message)
	})

	t.Run("rejects short password", func(t *testing.T) {
		handler := newAuthHandler(
			mocks.NewMockUserStore(), mocks.NewMockJWTService(), mocks.NewMockPasswordVerifier())

		req := newJSONRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
			Password: "short",
		})
		rr := httptest.NewRecorder()
		handler.Register(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		handler := newAuthHandler(
			mocks.NewMockUserStore(), mocks.NewMockJWTService(), mocks.NewMockPasswordVerifier())

		req := httptest.NewRequest(
			http.MethodPost, "/api/auth/register", strings.NewReader("{not json"))
		rr := httptest.NewRecorder()
		handler.Register(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLogin(t *testing.T) {
	user := testUser(t, "ada@example.com")

	t.Run("succeeds with valid credentials", func(t *testing.T) {
		userStore := mocks.NewMockUserStore().AddUser(user)
		verifier := mocks.NewMockPasswordVerifier()
		verifier.ShouldSucceed = true
		handler := newAuthHandler(userStore, mocks.NewMockJWTService(), verifier)

		req := newJSONRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "ada@example.com",
			Password: "password123",
		})
		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, user.ID, resp.UserID)
		assert.NotEqual(t, "", resp.AccessToken)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		userStore := mocks.NewMockUserStore().AddUser(user)
		verifier := mocks.NewMockPasswordVerifier()
		verifier.ShouldSucceed = false
		handler := newAuthHandler(userStore, mocks.NewMockJWTService(), verifier)

		req := newJSONRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "ada@example.com",
			Password: "wrong-password",
		})
		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", decodeErrorResponse(t, rr).Message)
	})

	t.Run("rejects unknown email with same message", func(t *testing.T) {
		handler := newAuthHandler(
			mocks.NewMockUserStore(), mocks.NewMockJWTService(), mocks.NewMockPasswordVerifier())

		req := newJSONRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})
		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", decodeErrorResponse(t, rr).Message)
	})

	t.Run("rejects deactivated account", func(t *testing.T) {
		inactive := testUser(t, "gone@example.com")
		inactive.Active = false
		userStore := mocks.NewMockUserStore().AddUser(inactive)
		verifier := mocks.NewMockPasswordVerifier()
		verifier.ShouldSucceed = true
		handler := newAuthHandler(userStore, mocks.NewMockJWTService(), verifier)

		req := newJSONRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "gone@example.com",
			Password: "password123",
		})
		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", decodeErrorResponse(t, rr).Message)
	})
}

func TestRefresh(t *testing.T) {
	user := testUser(t, "ada@example.com")

	t.Run("issues a fresh pair for a valid refresh token", func(t *testing.T) {
		userStore := mocks.NewMockUserStore().AddUser(user)
		jwtService := mocks.NewMockJWTService().WithUser(user.ID, user.Role)
		handler := newAuthHandler(userStore, jwtService, mocks.NewMockPasswordVerifier())

		req := newJSONRequest(t, http.MethodPost, "/api/auth/refresh", RefreshTokenRequest{
			RefreshToken: "mock-refresh-token",
		})
		rr := httptest.NewRecorder()
		handler.Refresh(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp RefreshTokenResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.NotEqual(t, "", resp.AccessToken)
		assert.NotEqual(t, "", resp.RefreshToken)
	})

	t.Run("rejects an invalid refresh token", func(t *testing.T) {
		jwtService := mocks.NewMockJWTService()
		jwtService.ValidationError = auth.ErrInvalidRefreshToken
		handler := newAuthHandler(
			mocks.NewMockUserStore(), jwtService, mocks.NewMockPasswordVerifier())

		req := newJSONRequest(t, http.MethodPost, "/api/auth/refresh", RefreshTokenRequest{
			RefreshToken: "garbage",
		})
		rr := httptest.NewRecorder()
		handler.Refresh(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects a refresh for a deactivated account", func(t *testing.T) {
		inactive := testUser(t, "gone@example.com")
		inactive.Active = false
		userStore := mocks.NewMockUserStore().AddUser(inactive)
		jwtService := mocks.NewMockJWTService().WithUser(inactive.ID, inactive.Role)
		handler := newAuthHandler(userStore, jwtService, mocks.NewMockPasswordVerifier())

		req := newJSONRequest(t, http.MethodPost, "/api/auth/refresh", RefreshTokenRequest{
			RefreshToken: "mock-refresh-token",
		})
		rr := httptest.NewRecorder()
		handler.Refresh(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid refresh token", decodeErrorResponse(t, rr).Message)
	})
}
