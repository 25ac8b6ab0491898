package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookswap/bookswap-api/internal/domain"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "valid user",
			userName: "Ada Lovelace",
			email:    "ada@example.com",
			password: "correct-horse-battery",
		},
		{
			name:     "email is normalized",
			userName: "Ada",
			email:    "  ADA@Example.COM ",
			password: "correct-horse-battery",
		},
		{
			name:     "empty name",
			userName: "  ",
			email:    "ada@example.com",
			password: "correct-horse-battery",
			wantErr:  domain.ErrEmptyUserName,
		},
		{
			name:     "invalid email",
			userName: "Ada",
			email:    "not-an-email",
			password: "correct-horse-battery",
			wantErr:  domain.ErrInvalidEmailFormat,
		},
		{
			name:     "password too short",
			userName: "Ada",
			email:    "ada@example.com",
			password: "short",
			wantErr:  domain.ErrPasswordTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := domain.NewUser(tt.userName, tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ada@example.com", user.Email)
			assert.Equal(t, domain.RoleUser, user.Role)
			assert.True(t, user.Active)
			assert.Zero(t, user.RatingCount)
		})
	}
}

func TestApplyRating(t *testing.T) {
	t.Parallel()

	user, err := domain.NewUser("Ada", "ada@example.com", "correct-horse-battery")
	require.NoError(t, err)

	// First rating of value r gives average r and count 1.
	require.NoError(t, user.ApplyRating(4))
	assert.InDelta(t, 4.0, user.RatingAverage, 1e-9)
	assert.Equal(t, 1, user.RatingCount)

	// (4*1 + 2) / 2 = 3
	require.NoError(t, user.ApplyRating(2))
	assert.InDelta(t, 3.0, user.RatingAverage, 1e-9)
	assert.Equal(t, 2, user.RatingCount)

	assert.ErrorIs(t, user.ApplyRating(0), domain.ErrInvalidRating)
	assert.ErrorIs(t, user.ApplyRating(6), domain.ErrInvalidRating)
	assert.Equal(t, 2, user.RatingCount)
}
