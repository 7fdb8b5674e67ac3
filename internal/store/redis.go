package store

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements [IdentityStore] with plain Redis string keys under a prefix.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisStore creates a client for cfg. No connection is made until the first operation.
func NewRedisStore(cfg shared.RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg.Prefix, cfg.Timeout())
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string, timeout time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, timeout: timeout}
}

func (r *RedisStore) Get(key string) ([]byte, error) {
	ctx, cancel := r.context()
	defer cancel()

	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrKeyNotFound
	}
	if err != nil {
		return nil, unavailable("get", key, err)
	}
	return value, nil
}

func (r *RedisStore) Set(key string, value []byte) error {
	ctx, cancel := r.context()
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (r *RedisStore) Remove(key string) error {
	ctx, cancel := r.context()
	defer cancel()

	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return unavailable("remove", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}
