// Package cache stores rendered API responses and drops them when the views
// they back go stale.
package cache

import (
	"context"
	"time"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "consultorio:http:"

// Store is a response cache backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}
