package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookswap/bookswap-api/internal/config"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BOOKSWAP_DATABASE_URL", "postgres://localhost:5432/bookswap?sslmode=disable")
	t.Setenv("BOOKSWAP_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("BOOKSWAP_SERVER_PORT", "9090")
	t.Setenv("BOOKSWAP_SERVER_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/bookswap?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.Auth.JWTSecret)

	// Defaults fill in what the environment leaves out.
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, 10080, cfg.Auth.RefreshTokenLifetimeMinutes)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database url",
			env: map[string]string{
				"BOOKSWAP_AUTH_JWT_SECRET": "0123456789abcdef0123456789abcdef",
			},
		},
		{
			name: "jwt secret too short",
			env: map[string]string{
				"BOOKSWAP_DATABASE_URL":    "postgres://localhost/bookswap",
				"BOOKSWAP_AUTH_JWT_SECRET": "too-short",
			},
		},
		{
			name: "invalid log level",
			env: map[string]string{
				"BOOKSWAP_DATABASE_URL":     "postgres://localhost/bookswap",
				"BOOKSWAP_AUTH_JWT_SECRET":  "0123456789abcdef0123456789abcdef",
				"BOOKSWAP_SERVER_LOG_LEVEL": "verbose",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
