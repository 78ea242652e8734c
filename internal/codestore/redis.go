package codestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores session KVs in Redis under
// "codestore:<namespace>:<key>". Keys expire ttl after their last write.
type RedisBackend struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisBackend creates a backend over an existing client.
func NewRedisBackend(client redis.Cmdable, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

// NewRedisClient opens a client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Session returns the KV of session id.
func (b *RedisBackend) Session(id string) KV {
	return &redisKV{backend: b, prefix: "codestore:" + namespace(id) + ":"}
}

// Ping checks the connection.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

type redisKV struct {
	backend *RedisBackend
	prefix  string
}

func (kv *redisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := kv.backend.client.Get(ctx, kv.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (kv *redisKV) Set(ctx context.Context, key, value string) error {
	if err := kv.backend.client.Set(ctx, kv.prefix+key, value, kv.backend.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
