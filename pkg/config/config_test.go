package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "X-Tenant-ID", cfg.Tenant.Header)
	assert.Equal(t, 20, cfg.Booking.DefaultPageSize)
	assert.Equal(t, 5*time.Minute, cfg.Registry.CacheTTL)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.Booking.RoomConflicts)
	assert.Equal(t, 15*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, 5*time.Second, cfg.Database.LockTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.Timeout)
}

func TestLoadReadsEnvironment(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv("TENANT_HEADER", "X-School")
	t.Setenv("BOOKING_ROOM_CONFLICTS", "true")
	t.Setenv("BOOKING_DEFAULT_PAGE_SIZE", "500")
	t.Setenv("REFERENCE_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DB_LOCK_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "X-School", cfg.Tenant.Header)
	assert.True(t, cfg.Booking.RoomConflicts)
	assert.Equal(t, 20, cfg.Booking.DefaultPageSize)
	assert.Equal(t, 5*time.Minute, cfg.Registry.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.Database.LockTimeout)
}
