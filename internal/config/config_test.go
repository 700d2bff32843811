package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("FINNHUB_API_KEY", "test-key")
}

func TestLoadDefaults(t *testing.T) {
	validEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, TokenBackendPaseto, cfg.Auth.TokenBackend)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "https://finnhub.io/api/v1", cfg.Finnhub.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Finnhub.QuoteCacheTTL)
}

func TestLoadRejectsBadSecretKey(t *testing.T) {
	validEnv(t)
	t.Setenv("AUTH_SECRET_KEY", "too-short")

	_, err := Load()
	assert.ErrorContains(t, err, "32 bytes")
}

func TestLoadRejectsUnknownTokenBackend(t *testing.T) {
	validEnv(t)
	t.Setenv("TOKEN_BACKEND", "tarot")

	_, err := Load()
	assert.ErrorContains(t, err, "TOKEN_BACKEND")
}

func TestLoadRequiresFinnhubKey(t *testing.T) {
	validEnv(t)
	t.Setenv("FINNHUB_API_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "FINNHUB_API_KEY")
}

func TestLoadOverrides(t *testing.T) {
	validEnv(t)
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("TOKEN_BACKEND", "jwt")
	t.Setenv("TRUSTED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, TokenBackendJWT, cfg.Auth.TokenBackend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.TrustedOrigins)
}

func TestConnectionString(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", DBName: "stocks", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=stocks sslmode=disable", c.ConnectionString())
}
