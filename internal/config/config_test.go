package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, 15*time.Minute, cfg.PollMaxDuration)
	assert.Equal(t, 24*time.Hour, cfg.PendingMaxAge)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, time.Minute, cfg.SessionSweepInterval)
	assert.Equal(t, PendingStoreMemory, cfg.PendingStore)
	assert.Equal(t, uint32(5), cfg.BreakerFailures)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowOrigins)
	assert.False(t, cfg.EventsEnabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND_URL", "https://api.shop.example/")
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("PENDING_STORE", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://shop.example, https://admin.shop.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://api.shop.example", cfg.BackendURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, PendingStoreRedis, cfg.PendingStore)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, []string{"https://shop.example", "https://admin.shop.example"}, cfg.CORSAllowOrigins)
}

func TestLoadConfigFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\npoll_max_duration: 5m\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7100", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.PollMaxDuration)
}

func TestValidate(t *testing.T) {
	t.Setenv("PENDING_STORE", "postgres")
	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_DSN")

	t.Setenv("PENDING_STORE", "mongo")
	_, err = Load()
	require.ErrorContains(t, err, "unknown PENDING_STORE")

	t.Setenv("PENDING_STORE", "memory")
	t.Setenv("BACKEND_URL", "not a url")
	_, err = Load()
	require.ErrorContains(t, err, "BACKEND_URL")

	t.Setenv("BACKEND_URL", "http://localhost:5000")
	t.Setenv("SESSION_IDLE_TTL", "0s")
	_, err = Load()
	require.ErrorContains(t, err, "SESSION_IDLE_TTL")
}
