package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharma-market/internal/store"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix       = "market:"
	maxWatchRetries = 10
)

// ErrConflict is returned when a key kept changing during every retry of Update
var ErrConflict = errors.New("redis: too many concurrent updates")

// Client is the Redis store backend
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and checks connectivity
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Get retrieves the raw value of a key, nil when absent
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Update performs an optimistic WATCH/MULTI transaction, retrying when the key
// changed between read and write
func (c *Client) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	fullKey := keyPrefix + key

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fullKey).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fullKey, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := c.rdb.Watch(ctx, txf, fullKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return fmt.Errorf("update %s: %w", key, ErrConflict)
}

// Expire sets a TTL on the key. Writes through Update clear it again.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, keyPrefix+key, ttl).Err()
}

// Delete removes a key
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, keyPrefix+key).Err()
}
