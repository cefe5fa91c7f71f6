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
	for _, key := range []string{"PORT", "DOCCHAT_BACKEND_URL", "DOCCHAT_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_CreatesDefault(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "docchat.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "default config should be written")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 800*time.Millisecond, cfg.CompletionDelay())
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())

	// Round trip: the written file loads to the same values.
	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfig_FileValuesAndRelativeLogPath(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "docchat.yaml")
	content := `
server:
  port: 9090
backend:
  base_url: http://rag.internal:8000
session:
  completion_delay_ms: 250
logging:
  level: debug
  file: logs/frontend.log
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://rag.internal:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.CompletionDelay())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(dir, "logs/frontend.log"), cfg.Logging.File)
	// Unset keys keep their defaults.
	assert.Equal(t, 120, cfg.Backend.RequestTimeout)

	require.NoError(t, cfg.EnsureDirectories())
	_, statErr := os.Stat(filepath.Join(dir, "logs"))
	assert.NoError(t, statErr)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("DOCCHAT_BACKEND_URL", "http://10.0.0.5:8000")
	t.Setenv("DOCCHAT_LOG_LEVEL", "WARN")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "docchat.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "http://10.0.0.5:8000", cfg.Backend.BaseURL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"defaults", func(*AppConfig) {}, ""},
		{"bad backend url", func(c *AppConfig) { c.Backend.BaseURL = "not a url" }, "BaseURL"},
		{"empty backend url", func(c *AppConfig) { c.Backend.BaseURL = "" }, "BaseURL"},
		{"port out of range", func(c *AppConfig) { c.Server.Port = 70000 }, "Port"},
		{"unknown log level", func(c *AppConfig) { c.Logging.Level = "verbose" }, "Level"},
		{"negative delay", func(c *AppConfig) { c.Session.CompletionDelayMs = -1 }, "CompletionDelayMs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}
