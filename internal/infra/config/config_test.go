package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithAPIKey(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.1.0", cfg.App.Version)
	require.Equal(t, "gpt-4", cfg.LLM.Model)
	require.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-6)
	require.Equal(t, 3, cfg.Adventure.Retry.MaxAttempts)
	require.Equal(t, 2*time.Second, cfg.Adventure.Retry.BaseDelay)
	require.Equal(t, 10*time.Second, cfg.Adventure.Retry.MaxDelay)
	require.Equal(t, CatalogMemory, cfg.Catalog.Backend)
	require.Equal(t, []string{"http://localhost:3000", "http://localhost:8000"}, cfg.HTTP.AllowedOrigins)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	_, err := Load()
	require.ErrorContains(t, err, "llm.apiKey")
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := `
app:
  version: 1.2.3
llm:
  apiKey: from-file
  model: gpt-4o-mini
adventure:
  retry:
    maxAttempts: 5
    baseDelay: 1s
    multiplier: 3
    maxDelay: 20s
catalog:
  backend: valkey
  redis:
    addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("OPENAI_MODEL", "gpt-4.1")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "1.2.3", cfg.App.Version)
	require.Equal(t, "from-file", cfg.LLM.APIKey)
	require.Equal(t, "gpt-4.1", cfg.LLM.Model)
	require.Equal(t, 5, cfg.Adventure.Retry.MaxAttempts)
	require.Equal(t, 3.0, cfg.Adventure.Retry.Multiplier)
	require.Equal(t, CatalogValkey, cfg.Catalog.Backend)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, "0.0.0.0:9090", cfg.HTTP.Address)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := map[string]func(*Config){
		"empty address":       func(c *Config) { c.HTTP.Address = "" },
		"zero attempts":       func(c *Config) { c.Adventure.Retry.MaxAttempts = 0 },
		"multiplier below 1":  func(c *Config) { c.Adventure.Retry.Multiplier = 0.5 },
		"cap below base":      func(c *Config) { c.Adventure.Retry.MaxDelay = time.Second },
		"unknown backend":     func(c *Config) { c.Catalog.Backend = "sqlite" },
		"valkey without addr": func(c *Config) { c.Catalog.Backend = CatalogValkey },
		"postgres no dsn":     func(c *Config) { c.Catalog.Backend = CatalogPostgres },
		"temperature":         func(c *Config) { c.LLM.Temperature = 3 },
		"metrics path":        func(c *Config) { c.Metrics.Path = "metrics" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.LLM.APIKey = "sk-test"
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestOverrideHostPort(t *testing.T) {
	require.Equal(t, "127.0.0.1:8000", overrideHostPort("0.0.0.0:8000", "127.0.0.1", ""))
	require.Equal(t, ":9000", overrideHostPort("bad", "", "9000"))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH", "APP_NAME", "PROJECT_NAME", "VERSION", "LOG_LEVEL",
		"HTTP_ADDRESS", "HOST", "PORT", "ALLOWED_ORIGINS",
		"OPENAI_API_KEY", "LLM_API_KEY", "OPENAI_MODEL", "LLM_MODEL", "LLM_BASE_URL", "LLM_TEMPERATURE",
		"CATALOG_BACKEND", "CATALOG_SNAPSHOT_PATH", "METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
