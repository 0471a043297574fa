package main

import (
	"context"
	"fmt"

	"github.com/citycare/storefront/pkg/config"
	"github.com/citycare/storefront/pkg/db"
	"github.com/citycare/storefront/pkg/localstore"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/migrate"
	pkgredis "github.com/citycare/storefront/pkg/redis"
)

type backends struct {
	store       localstore.Store
	idempotency pkgredis.IdempotencyStore
	closers     []func() error
}

func (b *backends) close(ctx context.Context, logg *logger.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logg.Error(ctx, "error closing backend", err)
		}
	}
}

// openBackends connects redis whenever it is configured, since replay
// protection uses it regardless of where device entries live.
func openBackends(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*backends, error) {
	b := &backends{}

	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled() {
		client, err := pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		redisClient = client
		b.closers = append(b.closers, client.Close)
	} else {
		logg.Warn(ctx, "redis not configured, idempotency replay disabled")
	}
	b.idempotency = idempotencyStore(redisClient)

	switch cfg.LocalStore.Backend {
	case config.LocalStoreRedis:
		b.store = localstore.NewRedis(redisClient, cfg.Redis.LocalTTL)
	case config.LocalStoreSQL:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			b.close(ctx, logg)
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		b.closers = append(b.closers, dbClient.Close)
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			b.close(ctx, logg)
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		b.store = localstore.NewSQL(dbClient)
	case config.LocalStoreMemory:
		b.store = localstore.NewMemory()
	default:
		b.close(ctx, logg)
		return nil, fmt.Errorf("unknown local store backend %q", cfg.LocalStore.Backend)
	}
	return b, nil
}
