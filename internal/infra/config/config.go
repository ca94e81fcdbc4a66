package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	App       AppConfig       `yaml:"app"`
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	Adventure AdventureConfig `yaml:"adventure"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AppConfig identifies the running service.
type AppConfig struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	LogLevel string `yaml:"logLevel"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// AdventureConfig drives the generation pipeline.
type AdventureConfig struct {
	Persona        string        `yaml:"persona"`
	AttemptTimeout time.Duration `yaml:"attemptTimeout"`
	Retry          RetryConfig   `yaml:"retry"`
}

// RetryConfig configures the provider retry policy.
type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseDelay   time.Duration `yaml:"baseDelay"`
	Multiplier  float64       `yaml:"multiplier"`
	MaxDelay    time.Duration `yaml:"maxDelay"`
}

// Catalog backends.
const (
	CatalogMemory   = "memory"
	CatalogValkey   = "valkey"
	CatalogPostgres = "postgres"
)

// CatalogConfig selects and configures the adventure catalog.
type CatalogConfig struct {
	Backend      string         `yaml:"backend"`
	SnapshotPath string         `yaml:"snapshotPath"`
	Object       ObjectConfig   `yaml:"object"`
	Seed         bool           `yaml:"seed"`
	Redis        RedisConfig    `yaml:"redis"`
	Postgres     PostgresConfig `yaml:"postgres"`
}

// ObjectConfig points at a catalog snapshot stored in an S3 compatible bucket.
type ObjectConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Key       string `yaml:"key"`
}

// Enabled reports whether an object snapshot is configured.
func (o ObjectConfig) Enabled() bool {
	return strings.TrimSpace(o.Endpoint) != "" && strings.TrimSpace(o.Bucket) != "" && strings.TrimSpace(o.Key) != ""
}

// RedisConfig contains connection information for the Valkey catalog.
type RedisConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := firstEnv("APP_NAME", "PROJECT_NAME"); v != "" {
		cfg.App.Name = v
	}
	if v := os.Getenv("VERSION"); v != "" {
		cfg.App.Version = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	} else if host, port := os.Getenv("HOST"), os.Getenv("PORT"); host != "" || port != "" {
		cfg.HTTP.Address = overrideHostPort(cfg.HTTP.Address, host, port)
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := firstEnv("OPENAI_API_KEY", "LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := firstEnv("OPENAI_MODEL", "LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("ADVENTURE_PERSONA"); v != "" {
		cfg.Adventure.Persona = v
	}
	if v := os.Getenv("ADVENTURE_ATTEMPT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Adventure.AttemptTimeout = parsed
		}
	}
	if v := os.Getenv("ADVENTURE_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Adventure.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("ADVENTURE_RETRY_BASE_DELAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Adventure.Retry.BaseDelay = parsed
		}
	}
	if v := os.Getenv("ADVENTURE_RETRY_MULTIPLIER"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Adventure.Retry.Multiplier = parsed
		}
	}
	if v := os.Getenv("ADVENTURE_RETRY_MAX_DELAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Adventure.Retry.MaxDelay = parsed
		}
	}
	if v := os.Getenv("CATALOG_BACKEND"); v != "" {
		cfg.Catalog.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("CATALOG_SNAPSHOT_PATH"); v != "" {
		cfg.Catalog.SnapshotPath = v
	}
	if v := os.Getenv("CATALOG_SEED"); v != "" {
		cfg.Catalog.Seed = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CATALOG_OBJECT_ENDPOINT"); v != "" {
		cfg.Catalog.Object.Endpoint = v
	}
	if v := os.Getenv("CATALOG_OBJECT_ACCESS_KEY"); v != "" {
		cfg.Catalog.Object.AccessKey = v
	}
	if v := os.Getenv("CATALOG_OBJECT_SECRET_KEY"); v != "" {
		cfg.Catalog.Object.SecretKey = v
	}
	if v := os.Getenv("CATALOG_OBJECT_BUCKET"); v != "" {
		cfg.Catalog.Object.Bucket = v
	}
	if v := os.Getenv("CATALOG_OBJECT_REGION"); v != "" {
		cfg.Catalog.Object.Region = v
	}
	if v := os.Getenv("CATALOG_OBJECT_KEY"); v != "" {
		cfg.Catalog.Object.Key = v
	}
	if v := os.Getenv("CATALOG_REDIS_ADDR"); v != "" {
		cfg.Catalog.Redis.Addr = v
	}
	if v := os.Getenv("CATALOG_REDIS_PREFIX"); v != "" {
		cfg.Catalog.Redis.Prefix = v
	}
	if v := os.Getenv("CATALOG_POSTGRES_DSN"); v != "" {
		cfg.Catalog.Postgres.DSN = v
	}
	if v := os.Getenv("CATALOG_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("CATALOG_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:     "EMA-AI",
			Version:  "0.1.0",
			LogLevel: "info",
		},
		HTTP: HTTPConfig{
			Address:      "0.0.0.0:8000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 3 * time.Minute,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:8000",
			},
		},
		LLM: LLMConfig{
			Model:       "gpt-4",
			Temperature: 0.7,
		},
		Adventure: AdventureConfig{
			AttemptTimeout: 60 * time.Second,
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   2 * time.Second,
				Multiplier:  2,
				MaxDelay:    10 * time.Second,
			},
		},
		Catalog: CatalogConfig{
			Backend: CatalogMemory,
			Redis: RedisConfig{
				Prefix: "catalog",
			},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.App.Version) == "" {
		return errors.New("app.version cannot be empty")
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm.apiKey cannot be empty (set OPENAI_API_KEY)")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be within [0, 2]")
	}
	if c.Adventure.AttemptTimeout < 0 {
		return errors.New("adventure.attemptTimeout cannot be negative")
	}
	if c.Adventure.Retry.MaxAttempts <= 0 {
		return errors.New("adventure.retry.maxAttempts must be positive")
	}
	if c.Adventure.Retry.BaseDelay < 0 {
		return errors.New("adventure.retry.baseDelay cannot be negative")
	}
	if c.Adventure.Retry.Multiplier < 1 {
		return errors.New("adventure.retry.multiplier must be at least 1")
	}
	if c.Adventure.Retry.MaxDelay < c.Adventure.Retry.BaseDelay {
		return errors.New("adventure.retry.maxDelay cannot be lower than baseDelay")
	}
	switch c.Catalog.Backend {
	case CatalogMemory:
	case CatalogValkey:
		if strings.TrimSpace(c.Catalog.Redis.Addr) == "" {
			return errors.New("catalog.redis.addr cannot be empty when the valkey catalog is selected")
		}
	case CatalogPostgres:
		if strings.TrimSpace(c.Catalog.Postgres.DSN) == "" {
			return errors.New("catalog.postgres.dsn cannot be empty when the postgres catalog is selected")
		}
	default:
		return fmt.Errorf("catalog.backend %q is not supported", c.Catalog.Backend)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if clean := strings.TrimSpace(part); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func overrideHostPort(current, host, port string) string {
	curHost, curPort, err := net.SplitHostPort(current)
	if err != nil {
		curHost, curPort = "", ""
	}
	if host == "" {
		host = curHost
	}
	if port == "" {
		port = curPort
	}
	return net.JoinHostPort(host, port)
}
