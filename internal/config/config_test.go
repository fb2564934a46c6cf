package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "mongo", cfg.Backend)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("POSTBOARD_STORE", "postgres")
	t.Setenv("POSTBOARD_PG_DSN", "postgres://localhost/postboard")
	t.Setenv("POSTBOARD_JWT_SECRET", "s3cret")
	t.Setenv("POSTBOARD_RATE_BURST", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Backend)
	assert.Equal(t, "postgres://localhost/postboard", cfg.PostgresDSN)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 5, cfg.RateBurst)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("POSTBOARD_STORE", "cassandra")
	_, err := Load()
	require.Error(t, err)
}
