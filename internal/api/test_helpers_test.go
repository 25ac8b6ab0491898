package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bookswap/bookswap-api/internal/api/shared"
	"github.com/bookswap/bookswap-api/internal/domain"
	"github.com/bookswap/bookswap-api/internal/service/exchange"
	"github.com/bookswap/bookswap-api/internal/store"
)

// mockExchangeService is a function-field mock of exchange.Service. It lives
// here rather than in the mocks package because the exchange package's own
// tests import mocks, which would create an import cycle.
type mockExchangeService struct {
	RequestTransferFn func(ctx context.Context, requesterID uuid.UUID, in exchange.TransferInput) (*domain.ExchangeRequest, error)
	TransitionFn      func(ctx context.Context, requestID, actorID uuid.UUID, target domain.RequestStatus) (*domain.ExchangeRequest, error)
	ForceCancelFn     func(ctx context.Context, requestID uuid.UUID) (*domain.ExchangeRequest, error)
	RateFn            func(ctx context.Context, requestID, raterID uuid.UUID, rating int, review string) (*domain.ExchangeRequest, error)
	DeleteFn          func(ctx context.Context, requestID, actorID uuid.UUID) error
	GetFn             func(ctx context.Context, requestID, actorID uuid.UUID) (*domain.ExchangeRequest, error)
	ListForUserFn     func(ctx context.Context, userID uuid.UUID, direction store.RequestDirection, filter store.RequestFilter) ([]*domain.ExchangeRequest, error)
	ListAllFn         func(ctx context.Context, filter store.RequestFilter) ([]*domain.ExchangeRequest, error)
}

var _ exchange.Service = (*mockExchangeService)(nil)

func (m *mockExchangeService) RequestTransfer(
	ctx context.Context,
	requesterID uuid.UUID,
	in exchange.TransferInput,
) (*domain.ExchangeRequest, error) {
	return m.RequestTransferFn(ctx, requesterID, in)
}

func (m *mockExchangeService) Transition(
	ctx context.Context,
	requestID, actorID uuid.UUID,
	target domain.RequestStatus,
) (*domain.ExchangeRequest, error) {
	return m.TransitionFn(ctx, requestID, actorID, target)
}

func (m *mockExchangeService) ForceCancel(
	ctx context.Context,
	requestID uuid.UUID,
) (*domain.ExchangeRequest, error) {
	return m.ForceCancelFn(ctx, requestID)
}

func (m *mockExchangeService) Rate(
	ctx context.Context,
	requestID, raterID uuid.UUID,
	rating int,
	review string,
) (*domain.ExchangeRequest, error) {
	return m.RateFn(ctx, requestID, raterID, rating, review)
}

func (m *mockExchangeService) Delete(ctx context.Context, requestID, actorID uuid.UUID) error {
	return m.DeleteFn(ctx, requestID, actorID)
}

func (m *mockExchangeService) Get(
	ctx context.Context,
	requestID, actorID uuid.UUID,
) (*domain.ExchangeRequest, error) {
	return m.GetFn(ctx, requestID, actorID)
}

func (m *mockExchangeService) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	direction store.RequestDirection,
	filter store.RequestFilter,
) ([]*domain.ExchangeRequest, error) {
	return m.ListForUserFn(ctx, userID, direction, filter)
}

func (m *mockExchangeService) ListAll(
	ctx context.Context,
	filter store.RequestFilter,
) ([]*domain.ExchangeRequest, error) {
	return m.ListAllFn(ctx, filter)
}

// newJSONRequest builds a request with the given body marshaled as JSON.
func newJSONRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser attaches an authenticated user to the request context, mirroring
// what the auth middleware does.
func asUser(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	ctx = context.WithValue(ctx, shared.UserRoleContextKey, domain.RoleUser)
	return r.WithContext(ctx)
}

// withURLParam attaches a chi route parameter to the request context so
// handlers can be exercised without mounting a full router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the standard error payload from the recorder.
func decodeErrorResponse(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

// testUser builds a persisted-shaped user with a mock password hash.
func testUser(t *testing.T, email string) *domain.User {
	t.Helper()

	user, err := domain.NewUser("Test User", email, "password123")
	require.NoError(t, err)
	user.HashedPassword = "hashed:password123"
	user.Password = ""
	return user
}

// testBook builds an available book owned by the given user.
func testBook(t *testing.T, ownerID uuid.UUID) *domain.Book {
	t.Helper()

	book, err := domain.NewBook(ownerID, "The Dispossessed", "Ursula K. Le Guin", "Sci-Fi", "")
	require.NoError(t, err)
	return book
}

// testRequest builds a pending free-transfer request.
func testRequest(t *testing.T, requesterID, bookID, ownerID uuid.UUID) *domain.ExchangeRequest {
	t.Helper()

	req, err := domain.NewExchangeRequest(requesterID, bookID, ownerID, domain.RequestKindFree, nil)
	require.NoError(t, err)
	return req
}
