package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Collection keys
const (
	KeyUsers                = "users"
	KeyRegistrationRequests = "registration_requests"
	KeyOrders               = "orders"
	KeyDrugs                = "drugs"
	KeyWarehouses           = "warehouses"
	KeyMarketItems          = "market_items"
)

// UploadHistoryKey returns the history collection key of a warehouse
func UploadHistoryKey(warehouseID string) string {
	return "upload_history:" + warehouseID
}

// DailyStatusKey returns the compliance document key of a warehouse
func DailyStatusKey(warehouseID string) string {
	return "daily_status:" + warehouseID
}

// CartKey returns the cart collection key of a pharmacy
func CartKey(pharmacyID string) string {
	return "cart:" + pharmacyID
}

// SessionKey returns the key of a login session
func SessionKey(token string) string {
	return "session:" + token
}

// ProcessedEventKey marks a consumed event
func ProcessedEventKey(eventID string) string {
	return "processed_event:" + eventID
}

// UpdateFunc receives the current raw value (nil when absent) and returns the
// value to write. Returning a nil slice and nil error leaves the key untouched.
type UpdateFunc func(current []byte) ([]byte, error)

// KV is the persistence contract shared by the memory, Redis and PostgreSQL backends.
// Update must run fn as one atomic read-modify-write step.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
}

// Expirer is implemented by backends that can drop a key on their own once
// its TTL has passed. A later Update of the key clears the TTL.
type Expirer interface {
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Expire sets a TTL on key when the backend supports it and is a no-op otherwise
func Expire(ctx context.Context, kv KV, key string, ttl time.Duration) error {
	e, ok := kv.(Expirer)
	if !ok || ttl <= 0 {
		return nil
	}
	if err := e.Expire(ctx, key, ttl); err != nil {
		return fmt.Errorf("failed to expire %s: %w", key, err)
	}
	return nil
}

// Collection is a JSON array of T stored under one key
type Collection[T any] struct {
	kv  KV
	key string
}

// NewCollection binds a typed collection to a key
func NewCollection[T any](kv KV, key string) *Collection[T] {
	return &Collection[T]{kv: kv, key: key}
}

// Key returns the storage key of the collection
func (c *Collection[T]) Key() string {
	return c.key
}

// List returns every element in stored order; a missing key is an empty collection
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	raw, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.key, err)
	}
	return decodeList[T](c.key, raw)
}

// Replace overwrites the whole collection
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.Mutate(ctx, func([]T) ([]T, error) {
		return items, nil
	})
}

// Mutate applies fn to the current elements atomically and stores the result.
// A nil result leaves the collection untouched.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	err := c.kv.Update(ctx, c.key, func(current []byte) ([]byte, error) {
		items, err := decodeList[T](c.key, current)
		if err != nil {
			return nil, err
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		return json.Marshal(next)
	})
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", c.key, err)
	}
	return nil
}

// Seed stores items only when the key does not exist yet
func (c *Collection[T]) Seed(ctx context.Context, items []T) (bool, error) {
	seeded := false
	err := c.kv.Update(ctx, c.key, func(current []byte) ([]byte, error) {
		if current != nil {
			return nil, nil
		}
		seeded = true
		return json.Marshal(items)
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed %s: %w", c.key, err)
	}
	return seeded, nil
}

// Clear removes the collection
func (c *Collection[T]) Clear(ctx context.Context) error {
	return c.kv.Delete(ctx, c.key)
}

// Document is a single JSON value of T stored under one key
type Document[T any] struct {
	kv  KV
	key string
}

// NewDocument binds a typed document to a key
func NewDocument[T any](kv KV, key string) *Document[T] {
	return &Document[T]{kv: kv, key: key}
}

// Get returns the stored value and whether it exists
func (d *Document[T]) Get(ctx context.Context) (T, bool, error) {
	var value T
	raw, err := d.kv.Get(ctx, d.key)
	if err != nil {
		return value, false, fmt.Errorf("failed to read %s: %w", d.key, err)
	}
	if raw == nil {
		return value, false, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, fmt.Errorf("failed to decode %s: %w", d.key, err)
	}
	return value, true, nil
}

// Set stores the value
func (d *Document[T]) Set(ctx context.Context, value T) error {
	return d.Mutate(ctx, func(T) (T, error) {
		return value, nil
	})
}

// Mutate applies fn to the current value (zero value when absent) atomically
func (d *Document[T]) Mutate(ctx context.Context, fn func(current T) (T, error)) error {
	err := d.kv.Update(ctx, d.key, func(current []byte) ([]byte, error) {
		var value T
		if current != nil {
			if err := json.Unmarshal(current, &value); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", d.key, err)
			}
		}
		next, err := fn(value)
		if err != nil {
			return nil, err
		}
		return json.Marshal(next)
	})
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", d.key, err)
	}
	return nil
}

// Delete removes the document
func (d *Document[T]) Delete(ctx context.Context) error {
	return d.kv.Delete(ctx, d.key)
}

func decodeList[T any](key string, raw []byte) ([]T, error) {
	items := []T{}
	if raw == nil {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
