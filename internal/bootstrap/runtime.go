// Package bootstrap opens the document store and Redis selected by config.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"quilog/internal/cache"
	"quilog/internal/config"
	"quilog/internal/database"
	"quilog/internal/observability"
	"quilog/internal/repository"
	"quilog/internal/repository/mongostore"

	"github.com/redis/go-redis/v9"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipRedis leaves the cache client unset, for one-shot tools that
	// never touch sessions or drafts.
	SkipRedis bool
	// EnsureIndexes creates Mongo indexes on connect.
	EnsureIndexes bool
}

// Runtime is an opened backend plus the optional Redis client.
type Runtime struct {
	Store *repository.Store
	Redis *redis.Client
}

// InitRuntime connects the store selected by cfg.StoreBackend and Redis.
// Redis is optional: an unreachable server leaves Runtime.Redis nil.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	store, err := OpenStore(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Store: store}
	if !opts.SkipRedis {
		cache.InitRedis(ctx, cfg.RedisURL)
		rt.Redis = cache.GetClient()
	}
	return rt, nil
}

// OpenStore connects the document store for cfg.StoreBackend.
func OpenStore(ctx context.Context, cfg *config.Config, opts Options) (*repository.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if opts.EnsureIndexes {
			if err := database.EnsureMongoIndexes(ctx, db); err != nil {
				_ = database.DisconnectMongo(client)
				return nil, err
			}
		}
		return mongostore.New(client, db, mongostore.Options{Transactions: cfg.MongoTxn}), nil
	case config.BackendPostgres, config.BackendSQLite, "":
		db, err := database.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		return repository.NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

// Close releases the store and Redis client, logging failures.
func (rt *Runtime) Close() {
	if rt == nil {
		return
	}
	if err := rt.Store.Close(); err != nil {
		observability.GlobalLogger.Error("error closing store", slog.String("error", err.Error()))
	}
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			observability.GlobalLogger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}
}
