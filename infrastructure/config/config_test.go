package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// clearEnv blanks the variables applyEnv reads so the host environment
// does not leak into a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_ADDRESS", "ENVIRONMENT", "STORE_BACKEND", "AWS_REGION", "TABLE_NAME",
		"DYNAMODB_TABLE", "EVENT_BUS_NAME", "IS_LAMBDA", "ENABLE_AUTH", "JWT_SECRET",
		"LOG_LEVEL", "METRICS_SINK", "ALLOWED_ORIGINS", "SUGGESTIONS_URL",
		"SUGGESTIONS_TIMEOUT", "SUGGESTIONS_RATE_PER_MINUTE", "SESSION_IDLE_TIMEOUT",
		"SESSION_MAX_PER_OWNER",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoader_Layers(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
log_level: warn
suggestions:
  timeout: 5s
  rate_per_minute: 12
sessions:
  max_per_owner: 3
`)
	writeFile(t, dir, "development.toml", `
log_level = "debug"

[events]
batch_size = 4
`)
	writeFile(t, dir, "local.json", `{"server_address": ":9999"}`)
	t.Setenv("SUGGESTIONS_URL", "http://similarity:8000/suggest")

	cfg, err := NewLoader(dir, "development").Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9999", cfg.ServerAddress)
	assert.Equal(t, 5*time.Second, cfg.Suggestions.Timeout.Duration)
	assert.Equal(t, 12, cfg.Suggestions.RatePerMinute)
	assert.Equal(t, 3, cfg.Sessions.MaxPerOwner)
	assert.Equal(t, 4, cfg.Events.BatchSize)
	assert.Equal(t, 1024, cfg.Events.BufferSize, "unset values keep their defaults")
	assert.Equal(t, "http://similarity:8000/suggest", cfg.Suggestions.ServiceURL)
	assert.Equal(t, []string{
		"defaults",
		filepath.Join(dir, "base.yaml"),
		filepath.Join(dir, "development.toml"),
		filepath.Join(dir, "local.json"),
		"environment",
	}, cfg.LoadedFrom)
}

func TestLoader_LocalOnlyInDevelopment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "local.yaml", "log_level: debug\n")

	cfg, err := NewLoader(dir, "staging").Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoader_Errors(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "sessions: [not, a, map]\n")
	_, err := NewLoader(dir, "development").Load()
	assert.ErrorContains(t, err, "failed to load base config")

	dir = t.TempDir()
	writeFile(t, dir, "base.yaml", "store_backend: postgres\n")
	_, err = NewLoader(dir, "development").Load()
	assert.ErrorContains(t, err, "STORE_BACKEND")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad metrics sink", mutate: func(c *Config) { c.MetricsSink = "statsd" }, wantErr: "METRICS_SINK"},
		{name: "negative rate", mutate: func(c *Config) { c.Suggestions.RatePerMinute = -1 }, wantErr: "SUGGESTIONS_RATE_PER_MINUTE"},
		{name: "negative session cap", mutate: func(c *Config) { c.Sessions.MaxPerOwner = -1 }, wantErr: "SESSION_MAX_PER_OWNER"},
		{
			name: "production auth needs a secret",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.EnableAuth = true
			},
			wantErr: "JWT_SECRET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SESSION_IDLE_TIMEOUT", "15m")
	t.Setenv("SESSION_MAX_PER_OWNER", "not-a-number")
	t.Setenv("IS_LAMBDA", "yes")

	cfg := Default()
	applyEnv(cfg)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Sessions.IdleTimeout.Duration)
	assert.Equal(t, 20, cfg.Sessions.MaxPerOwner)
	assert.True(t, cfg.IsLambda)
}

func TestWatcher_Reload(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "log_level: info\n")

	loader := NewLoader(dir, "development")
	initial, err := loader.Load()
	require.NoError(t, err)

	w, err := NewWatcher(initial, loader, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	var calls int32
	w.OnChange(func(*Config) { panic("callback failures are contained") })
	w.OnChange(func(cfg *Config) {
		atomic.AddInt32(&calls, 1)
	})

	writeFile(t, dir, "base.yaml", "log_level: debug\n")
	w.Reload()
	assert.Equal(t, "debug", w.Config().LogLevel)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	writeFile(t, dir, "base.yaml", "store_backend: postgres\n")
	w.Reload()
	assert.Equal(t, "debug", w.Config().LogLevel, "an invalid reload keeps the previous config")
}

func TestWatcher_DisabledOutsideDevelopment(t *testing.T) {
	cfg := Default()
	cfg.Environment = "production"

	w, err := NewWatcher(cfg, NewLoader(t.TempDir(), "production"), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, w.watcher)
	assert.Same(t, cfg, w.Config())
	w.Stop()
	w.Stop()
}
