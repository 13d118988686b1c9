package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/starford/workbench/internal/apperr"
)

// Redis implements Provider with one string key per namespace.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps a connected client. Keys are stored as prefix+namespace.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: redis ping: %w", err)
	}
	return NewRedis(client, "workbench:"), nil
}

func (r *Redis) key(ns string) string {
	return r.prefix + ns
}

// Load returns the stored blob.
func (r *Redis) Load(ctx context.Context, namespace string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(namespace)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("storage: load %s: %w", namespace, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: load %s: %w", namespace, err)
	}
	return data, nil
}

// Save sets the blob without expiry.
func (r *Redis) Save(ctx context.Context, namespace string, data []byte) error {
	if err := r.client.Set(ctx, r.key(namespace), data, 0).Err(); err != nil {
		return fmt.Errorf("storage: save %s: %w", namespace, err)
	}
	return nil
}

// Delete removes the key.
func (r *Redis) Delete(ctx context.Context, namespace string) error {
	if err := r.client.Del(ctx, r.key(namespace)).Err(); err != nil {
		return fmt.Errorf("storage: delete %s: %w", namespace, err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
