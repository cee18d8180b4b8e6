package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()

	assert.Equal(t, "zoolspeed", cfg.AppName)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 10, cfg.ResolveRateLimit.Burst)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "SQLite")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RESOLVE_RATE_PER_SECOND", "0.5")
	t.Setenv("DATABASE_MAX_OPEN_CONN", "not-a-number")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBType)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.InDelta(t, 0.5, cfg.ResolveRateLimit.Rate, 1e-9)
	assert.Equal(t, 20, cfg.DBMaxOpenConn)
	assert.True(t, cfg.IsProduction())
}
