package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "local", cfg.Server.DefaultOwner)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, time.Second, cfg.Sync.Debounce)
	assert.Equal(t, "09:00", cfg.Calendar.StartTime)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Empty(t, cfg.S3.BucketName)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
store:
  backend: redis
redis:
  address: cache:6379
  db: 2
sync:
  debounce: 5s
calendar:
  start_time: "07:15"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("REDIS_PREFIX", "rb-test")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Address)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "rb-test", cfg.Redis.Prefix)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "07:15", cfg.Calendar.StartTime)
	assert.Equal(t, MaxDebounce, cfg.Sync.Debounce)
}

func TestClampDebounce(t *testing.T) {
	assert.Equal(t, MinDebounce, ClampDebounce(0))
	assert.Equal(t, 750*time.Millisecond, ClampDebounce(750*time.Millisecond))
	assert.Equal(t, MaxDebounce, ClampDebounce(time.Minute))
}
