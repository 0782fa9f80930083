package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the default config path and working directory at empty
// temp dirs and clears relevant variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	for _, key := range []string{EnvServiceURL, EnvTimeout, EnvRateLimit, EnvPort, EnvLogLevel, EnvLogFormat, EnvDatabaseURL} {
		t.Setenv(key, "")
	}
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.ServiceURL)
	assert.Equal(t, 120*time.Second, cfg.Timeout)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "leafcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
service_url: https://plants.example.com
timeout: 30s
rate_limit: 0.5
log_level: debug
`), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://plants.example.com", cfg.ServiceURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.RateLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_DefaultPathFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "xdg", "leafcheck", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("port: 9090\n"), 0o600))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [\n"), 0o600))

	_, err := Load(path, nil)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "leafcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service_url: https://from-file.example.com\n"), 0o600))

	t.Setenv(EnvServiceURL, "https://from-env.example.com")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvRateLimit, "0")
	t.Setenv(EnvDatabaseURL, "postgres://localhost/leafcheck")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.example.com", cfg.ServiceURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, "postgres://localhost/leafcheck", cfg.DatabaseURL)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEAFCHECK_PORT=7070\nLOG_FORMAT=json\n"), 0o600))
	os.Unsetenv(EnvPort)
	os.Unsetenv(EnvLogFormat)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvTimeout, "soon"},
		{EnvRateLimit, "fast"},
		{EnvPort, "eighty"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("", nil)
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.ServiceURL = "" }},
		{"no scheme", func(c *Config) { c.ServiceURL = "localhost:5000" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}
