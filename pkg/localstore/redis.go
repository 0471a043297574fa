package localstore

import (
	"context"
	"errors"
	"time"

	pkgredis "github.com/citycare/storefront/pkg/redis"
)

type redisBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	LocalKey(namespace, key string) string
}

// Redis stores entries as plain redis strings with a sliding TTL.
type Redis struct {
	client redisBackend
	ttl    time.Duration
}

func NewRedis(client redisBackend, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, namespace, key string) (string, error) {
	v, err := r.client.Get(ctx, r.client.LocalKey(namespace, key))
	if errors.Is(err, pkgredis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *Redis) Set(ctx context.Context, namespace, key, value string) error {
	return r.client.Set(ctx, r.client.LocalKey(namespace, key), value, r.ttl)
}

func (r *Redis) Delete(ctx context.Context, namespace, key string) error {
	return r.client.Del(ctx, r.client.LocalKey(namespace, key))
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
