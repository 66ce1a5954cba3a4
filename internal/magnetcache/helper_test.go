package magnetcache_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
)

type errorEvent struct {
	action string
	cause  metadata.ErrorCause
	attrs  []metadata.Attribute
}

type lookupEvent struct {
	key string
	hit bool
}

// spySink is a test double for metadata.MetadataSink
type spySink struct {
	metadata.NoopSink
	mu      sync.Mutex
	errors  []errorEvent
	lookups []lookupEvent
}

func (s *spySink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, errorEvent{action: action, cause: cause, attrs: attrs})
}

func (s *spySink) RecordCacheLookup(key string, hit bool, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups = append(s.lookups, lookupEvent{key: key, hit: hit})
}

func (s *spySink) errorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors)
}

// failingKV fails every call with err.
type failingKV struct {
	err error
}

func (f failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f failingKV) SetWithExpiry(context.Context, string, []byte, time.Duration) error {
	return f.err
}

func (f failingKV) Close() error { return nil }

// hangingKV blocks until the caller gives up.
type hangingKV struct{}

func (hangingKV) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	<-ctx.Done()
	return nil, false, ctx.Err()
}

func (hangingKV) SetWithExpiry(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

func (hangingKV) Close() error { return nil }

var errBackendDown = errors.New("connection refused")

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
