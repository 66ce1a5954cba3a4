package magnetcache

import (
	"context"
	"sync"
	"time"
)

// MemoryKV is an in-memory implementation of the KV port.
// It uses a map for storage and provides thread-safe operations via RWMutex.
//
// Entries live only as long as the process. Expiry is checked on read
// against an injectable clock.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]memoryItem
	now  func() time.Time
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryKV creates a new in-memory store using the wall clock.
func NewMemoryKV() *MemoryKV {
	return NewMemoryKVWithClock(time.Now)
}

func NewMemoryKVWithClock(now func() time.Time) *MemoryKV {
	return &MemoryKV{
		data: make(map[string]memoryItem),
		now:  now,
	}
}

func (c *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	item, exists := c.data[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}
	if !c.now().Before(item.expiresAt) {
		c.mu.Lock()
		// re-check, a concurrent write may have refreshed it
		if current, ok := c.data[key]; ok && !c.now().Before(current.expiresAt) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	value := make([]byte, len(item.value))
	copy(value, item.value)
	return value, true, nil
}

// SetWithExpiry stores value until ttl elapses. If the key already exists,
// the value and its expiry are overwritten.
func (c *MemoryKV) SetWithExpiry(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = memoryItem{
		value:     stored,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *MemoryKV) Close() error {
	return nil
}

