package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/adventure-ai/internal/domain/adventure"
	"github.com/yanqian/adventure-ai/internal/domain/similarity"
	"github.com/yanqian/adventure-ai/internal/infra/catalog"
	"github.com/yanqian/adventure-ai/internal/infra/config"
	"github.com/yanqian/adventure-ai/internal/infra/llm/chatgpt"
	"github.com/yanqian/adventure-ai/pkg/retry"
)

func provideAdventureConfig(cfg *config.Config) adventure.Config {
	return adventure.Config{
		Persona:        cfg.Adventure.Persona,
		AttemptTimeout: cfg.Adventure.AttemptTimeout,
		Retry: retry.Backoff{
			MaxAttempts: cfg.Adventure.Retry.MaxAttempts,
			BaseDelay:   cfg.Adventure.Retry.BaseDelay,
			Multiplier:  cfg.Adventure.Retry.Multiplier,
			MaxDelay:    cfg.Adventure.Retry.MaxDelay,
		},
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideCompleter(cfg *config.Config, client *chatgpt.Client, logger *slog.Logger) *chatgpt.Completer {
	return chatgpt.NewCompleter(client, cfg.LLM.Model, cfg.LLM.Temperature, logger)
}

// provideCatalog builds the configured catalog backend. Backends that cannot be
// reached fall back to an in-memory catalog over the same snapshot.
func provideCatalog(cfg *config.Config, logger *slog.Logger) (similarity.Catalog, func(), error) {
	snap := loadSnapshot(cfg, logger)
	fallback := catalog.NewMemoryCatalog(snap)
	noop := func() {}

	switch cfg.Catalog.Backend {
	case config.CatalogValkey:
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory catalog", "error", err)
			return fallback, noop, nil
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory catalog", "error", err)
			return fallback, noop, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory catalog", "error", err)
			client.Close()
			return fallback, noop, nil
		}
		store := catalog.NewValkeyCatalog(client, cfg.Catalog.Redis.Prefix)
		if cfg.Catalog.Seed {
			if err := store.Seed(ctx, snap); err != nil {
				logger.Error("valkey catalog seed failed", "error", err)
				client.Close()
				return nil, nil, err
			}
			logger.Info("valkey catalog seeded", "adventures", len(snap.Adventures))
		}
		logger.Info("valkey catalog enabled", "addr", cfg.Catalog.Redis.Addr)
		return store, client.Close, nil

	case config.CatalogPostgres:
		pool, err := newPostgresPool(cfg, logger)
		if err != nil {
			return fallback, noop, nil
		}
		store := catalog.NewPostgresCatalog(pool)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("postgres catalog schema failed", "error", err)
			pool.Close()
			return nil, nil, err
		}
		if cfg.Catalog.Seed {
			if err := store.Seed(ctx, snap); err != nil {
				logger.Error("postgres catalog seed failed", "error", err)
				pool.Close()
				return nil, nil, err
			}
			logger.Info("postgres catalog seeded", "adventures", len(snap.Adventures))
		}
		logger.Info("postgres catalog enabled")
		return store, pool.Close, nil
	}

	logger.Info("memory catalog enabled", "adventures", len(snap.Adventures))
	return fallback, noop, nil
}

func loadSnapshot(cfg *config.Config, logger *slog.Logger) similarity.Snapshot {
	switch {
	case cfg.Catalog.Object.Enabled():
		obj := cfg.Catalog.Object
		source, err := catalog.NewObjectSnapshotSource(obj.Endpoint, obj.AccessKey, obj.SecretKey, obj.Bucket, obj.Region, obj.Key, logger)
		if err != nil {
			logger.Error("invalid object snapshot configuration, using built-in catalog", "error", err)
			return similarity.SeedSnapshot()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		snap, err := source.Load(ctx)
		if err != nil {
			logger.Error("object snapshot download failed, using built-in catalog", "error", err)
			return similarity.SeedSnapshot()
		}
		return snap
	case strings.TrimSpace(cfg.Catalog.SnapshotPath) != "":
		snap, err := catalog.LoadSnapshotFile(cfg.Catalog.SnapshotPath)
		if err != nil {
			logger.Error("snapshot file unreadable, using built-in catalog", "path", cfg.Catalog.SnapshotPath, "error", err)
			return similarity.SeedSnapshot()
		}
		return snap
	default:
		return similarity.SeedSnapshot()
	}
}

func newPostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.Catalog.Postgres.DSN))
	if err != nil {
		logger.Error("invalid postgres dsn, using memory catalog", "error", err)
		return nil, err
	}
	if cfg.Catalog.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Catalog.Postgres.MaxConns
	}
	if cfg.Catalog.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Catalog.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory catalog", "error", err)
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory catalog", "error", err)
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Catalog.Redis.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Catalog.Redis.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Catalog.Redis.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
