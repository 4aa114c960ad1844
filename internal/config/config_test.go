package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CHECKERS_CONFIG", "LISTEN_ADDR", "REDIS_URL", "DATABASE_URL", "GAME_TTL_SEC", "SQUARE_SIZE", "MESSAGES_DIR", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE", "LOG_TO_FILE", "LOG_TO_CONSOLE", "LOG_CALLER"} {
		t.Setenv(k, "")
	}
}

func TestLoadRequiresRedis(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "checkers.yaml")
	body := []byte("listen_addr: \":9000\"\nredis_url: redis://file:6379/1\nsquare_size: 64\nlog:\n  level: debug\n  format: json\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("CHECKERS_CONFIG", path)
	t.Setenv("REDIS_URL", "redis://env:6379/0")
	t.Setenv("LOG_TO_FILE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "redis://env:6379/0", cfg.RedisURL, "env overrides file")
	assert.Equal(t, 64, cfg.SquareSize)
	assert.Equal(t, 86400, cfg.GameTTLSec)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Log.File, "LOG_TO_FILE=false drops file output")
}

func TestLoadRejectsTinySquares(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SQUARE_SIZE", "8")
	_, err := Load()
	assert.Error(t, err)
}
