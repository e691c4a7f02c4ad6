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
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.StaleTime)
	assert.Equal(t, 5*time.Minute, cfg.Cache.GCTime)
	assert.Equal(t, PersistNone, cfg.Cache.Persist)
	assert.Equal(t, CredentialFile, cfg.Credentials.Backend)
	assert.Equal(t, 2, cfg.Cache.RefetchWorkers)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://wellness.example.org/api/")
	t.Setenv("API_TIMEOUT", "15s")
	t.Setenv("CACHE_PERSIST", "Ristretto")
	t.Setenv("CACHE_STALE_TIME", "not-a-duration")
	t.Setenv("REDIS_ADDRS", "10.0.0.1:6379, 10.0.0.2:6379,")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "https://wellness.example.org/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, PersistRistretto, cfg.Cache.Persist)
	assert.Equal(t, 30*time.Second, cfg.Cache.StaleTime)
	assert.Equal(t, []string{"10.0.0.1:6379", "10.0.0.2:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
}

func TestMetricsFileEnablesMetrics(t *testing.T) {
	t.Setenv("ENABLE_METRICS", "false")
	t.Setenv("METRICS_FILE", "/var/lib/node_exporter/wellness.prom")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/var/lib/node_exporter/wellness.prom", cfg.Metrics.File)
}

func TestLoadFromEnvFile(t *testing.T) {
	// empty values keep godotenv from leaking into the process environment
	t.Setenv("CREDENTIAL_BACKEND", "")
	t.Setenv("TOAST_TTL", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "client.env")
	require.NoError(t, os.WriteFile(path, []byte("CREDENTIAL_BACKEND=memory\nTOAST_TTL=10s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, CredentialMemory, cfg.Credentials.Backend)
	assert.Equal(t, 10*time.Second, cfg.Notify.ToastTTL)
}
