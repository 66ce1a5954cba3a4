package magnetcache

import (
	"context"
	"time"
)

// NoopKV disables caching: every lookup misses and writes are dropped.
type NoopKV struct{}

func (NoopKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopKV) SetWithExpiry(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NoopKV) Close() error {
	return nil
}
