// Package app wires configuration into the store, cache and ledger shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/loan-ledger/internal/cache"
	"github.com/segyhp/loan-ledger/internal/config"
	"github.com/segyhp/loan-ledger/internal/repository"
	"github.com/segyhp/loan-ledger/internal/service"
)

// Deps holds everything a binary needs; Close releases it.
type Deps struct {
	Store  repository.Store
	Redis  *redis.Client
	Ledger *service.LedgerService
}

func (d *Deps) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			log.Printf("close redis: %v", err)
		}
	}
	if err := d.Store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
}

// OpenStore picks the store implementation named by DATABASE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Printf("Using in-memory store")
		return repository.NewMemoryStore(), nil
	}

	store, err := repository.OpenSQLStore(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == repository.DriverPostgres {
		db := store.DB()
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}
	return store, nil
}

// OpenRedis returns nil when no REDIS_ADDR is configured.
func OpenRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	log.Printf("Redis connection established addr=%s", cfg.Redis.Addr)
	return client, nil
}

// Open builds the store, the optional status cache and the ledger.
func Open(ctx context.Context, cfg *config.Config) (*Deps, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := OpenRedis(ctx, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	var statusCache cache.StatusCache = cache.Noop{}
	if client != nil {
		statusCache = cache.NewRedisStatusCache(client, cfg.Redis.CacheTTL)
	}

	return &Deps{
		Store:  store,
		Redis:  client,
		Ledger: service.NewLedgerService(store, statusCache, cfg),
	}, nil
}
