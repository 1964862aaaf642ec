package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abasto-labs/savings-api/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadForTests(map[string]string{
		"SNAPSHOT_DIR":      dir,
		"APP_ENV":           "",
		"PORT":              "",
		"RATE_LIMIT_MAX":    "",
		"RATE_LIMIT_WINDOW": "",
		"RESULT_CACHE_SIZE": "",
		"SHUTDOWN_TIMEOUT":  "",
	})
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, dir, cfg.SnapshotDir)
	require.Equal(t, 120, cfg.RateLimitMax)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.Equal(t, 8, cfg.ResultCacheSize)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRequiresSnapshotDir(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"SNAPSHOT_DIR": "",
	})
	require.Error(t, err)
}

func TestLoadRejectsMissingDirectory(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"SNAPSHOT_DIR": "/does/not/exist/savings",
	})
	require.Error(t, err)
}

func TestHTTPAddrNormalizesPort(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadForTests(map[string]string{
		"SNAPSHOT_DIR": dir,
		"PORT":         ":9090",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
}
