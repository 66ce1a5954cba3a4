package magnetcache

import (
	"context"
	"time"
)

// KV is the storage port behind Store. Adapters own expiry: Get must not
// return a value whose ttl has elapsed.
//
// Get reports a miss as (nil, false, nil); err is reserved for backend failures.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
