package shared_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookswap/bookswap-api/internal/api/shared"
)

type taggedPayload struct {
	Email string `json:"email" validate:"required,email"`
}

type selfValidating struct {
	err error
}

func (s selfValidating) Validate() error { return s.err }

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.io"}`))

	var payload taggedPayload
	require.NoError(t, shared.DecodeJSON(r, &payload))
	assert.Equal(t, "a@b.io", payload.Email)
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	t.Run("applies struct tags", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, shared.ValidateRequest(taggedPayload{Email: "a@b.io"}))
		assert.Error(t, shared.ValidateRequest(taggedPayload{Email: "not-an-email"}))
	})

	t.Run("prefers a type's own Validate method", func(t *testing.T) {
		t.Parallel()
		sentinel := errors.New("rejected")
		assert.ErrorIs(t, shared.ValidateRequest(selfValidating{err: sentinel}), sentinel)
		assert.NoError(t, shared.ValidateRequest(selfValidating{}))
	})
}
