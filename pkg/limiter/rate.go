package limiter

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rohmanhakim/magnet-resolver/pkg/timeutil"
)

// RateLimiter paces consecutive requests against the same host.
// Responsibilities:
// - Bookkeep each hostname's last fetch timestamp
// - Compute the remaining delay for a host from base delay and jitter
// - Block a caller until that delay has passed
type RateLimiter interface {
	SetBaseDelay(baseDelay time.Duration)
	SetJitter(jitter time.Duration)
	SetRandomSeed(randomSeed int64)
	MarkLastFetchAsNow(host string)
	ResolveDelay(host string) time.Duration
	Wait(ctx context.Context, host string) error
}

type ConcurrentRateLimiter struct {
	mu          sync.RWMutex
	rngMu       sync.Mutex
	baseDelay   time.Duration
	jitter      time.Duration
	lastFetchAt map[string]time.Time
	rng         *rand.Rand
}

func NewConcurrentRateLimiter() *ConcurrentRateLimiter {
	return &ConcurrentRateLimiter{
		lastFetchAt: make(map[string]time.Time),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ConcurrentRateLimiter) SetBaseDelay(baseDelay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.baseDelay = baseDelay
}

func (r *ConcurrentRateLimiter) SetJitter(jitter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jitter = jitter
}

func (r *ConcurrentRateLimiter) SetRandomSeed(randomSeed int64) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	r.rng = rand.New(rand.NewSource(randomSeed))
}

// Mark the given host lastFetch to time.Now()
func (r *ConcurrentRateLimiter) MarkLastFetchAsNow(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastFetchAt[host] = time.Now()
}

// Compute jitter for the given max duration
// Returns a pseudo-random duration between 0 and max
func (r *ConcurrentRateLimiter) computeJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return time.Duration(r.rng.Int63n(int64(max)))
}

// ResolveDelay returns how long a caller must still wait before fetching host.
// FinalDelay = BaseDelay + Jitter, measured from the host's last fetch.
func (r *ConcurrentRateLimiter) ResolveDelay(host string) time.Duration {
	r.mu.RLock()
	lastFetchAt, exists := r.lastFetchAt[host]
	base := r.baseDelay
	jitter := r.jitter
	r.mu.RUnlock()

	// return no delay if the host not fetched yet
	if !exists {
		return time.Duration(0)
	}

	finalDelay := timeutil.MaxDuration([]time.Duration{base, 0})
	finalDelay += r.computeJitter(jitter)

	elapsed := time.Since(lastFetchAt)
	if elapsed < finalDelay {
		return finalDelay - elapsed
	}

	return time.Duration(0)
}

// Wait blocks until host may be fetched again, then marks it as fetched now.
func (r *ConcurrentRateLimiter) Wait(ctx context.Context, host string) error {
	if err := timeutil.SleepContext(ctx, r.ResolveDelay(host)); err != nil {
		return err
	}
	r.MarkLastFetchAsNow(host)
	return nil
}

func (r *ConcurrentRateLimiter) BaseDelay() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseDelay
}

func (r *ConcurrentRateLimiter) Jitter() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jitter
}

// LastFetchAt returns a copy of the per-host bookkeeping.
func (r *ConcurrentRateLimiter) LastFetchAt() map[string]time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copyMap := make(map[string]time.Time, len(r.lastFetchAt))
	for k, v := range r.lastFetchAt {
		copyMap[k] = v
	}
	return copyMap
}
