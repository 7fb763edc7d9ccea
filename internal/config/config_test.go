package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PDF2AI_HOST", "PDF2AI_PORT", "PDF2AI_CORS_ORIGINS", "PDF2AI_MAX_UPLOAD_BYTES",
		"PDF2AI_LLM_PROVIDER", "OLLAMA_HOST", "OLLAMA_MODEL", "OPENAI_API_KEY",
		"PDF2AI_CACHE_DRIVER", "REDIS_ADDR", "REDIS_PASSWORD", "PDF2AI_BACKEND_URL",
		"PDF2AI_SCAN_DURATION", "PDF2AI_AUTO_OPEN_SUMMARY", "PDF2AI_LOG_LEVEL", "PDF2AI_LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:8000", cfg.Server.Addr())
	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxSize)
	assert.Equal(t, 30*time.Second, cfg.Client.ScanDuration)
	assert.True(t, cfg.Client.AutoOpenSummary)
	assert.Contains(t, cfg.Server.CORSOrigins, "http://localhost:3000")
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pdf2ai.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  cors_origins: ["http://example.test"]
cache:
  driver: disk
  ttl: 1h
client:
  scan_duration: 45s
  auto_open_summary: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, []string{"http://example.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "disk", cfg.Cache.Driver)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 45*time.Second, cfg.Client.ScanDuration)
	assert.False(t, cfg.Client.AutoOpenSummary)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pdf2ai.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))
	t.Setenv("PDF2AI_PORT", "9191")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("PDF2AI_CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("OLLAMA_MODEL=llama3\nPDF2AI_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("OLLAMA_MODEL")
		os.Unsetenv("PDF2AI_LOG_LEVEL")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  driver: memcached\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid cache driver")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")
}
