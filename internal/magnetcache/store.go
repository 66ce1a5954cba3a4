package magnetcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
	"github.com/rohmanhakim/magnet-resolver/pkg/hashutil"
)

/*
Store is the cache adapter used by the resolver and the orchestrator.

- Lookup never fails: a miss, an undecodable record and an unreachable
  backend all read as "absent". Backend problems are recorded, not returned.
- Save is best effort. The caller decides whether to log and continue.
- Every backend call is bounded by the op timeout so a hung backend
  cannot eat the per-item budget.
*/
type Store struct {
	metadataSink metadata.MetadataSink
	kv           KV
	backend      string
	digest       hashutil.HashAlgo
	opTimeout    time.Duration
}

func NewStore(
	metadataSink metadata.MetadataSink,
	kv KV,
	backend string,
	digest hashutil.HashAlgo,
	opTimeout time.Duration,
) *Store {
	if !hashutil.IsSupported(digest) {
		digest = hashutil.HashAlgoMD5
	}
	return &Store{
		metadataSink: metadataSink,
		kv:           kv,
		backend:      backend,
		digest:       digest,
		opTimeout:    opTimeout,
	}
}

// Key derives the cache key of query with the configured digest.
func (s *Store) Key(query string) CacheKey {
	return deriveKey(query, s.digest)
}

func (s *Store) Backend() string {
	return s.backend
}

func (s *Store) Lookup(ctx context.Context, key CacheKey) (CacheEntry, bool) {
	callerMethod := "Store.Lookup"
	startTime := time.Now()

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	raw, found, err := s.kv.Get(opCtx, string(key))
	if err != nil {
		s.recordError(callerMethod, key, s.classifyBackendError(opCtx, err))
		s.metadataSink.RecordCacheLookup(string(key), false, time.Since(startTime))
		return CacheEntry{}, false
	}
	if !found {
		s.metadataSink.RecordCacheLookup(string(key), false, time.Since(startTime))
		return CacheEntry{}, false
	}

	entry, err := decodeEntry(raw)
	if err != nil {
		s.recordError(callerMethod, key, &CacheUnavailableError{
			Message:   fmt.Sprintf("undecodable record: %v", err),
			Retryable: false,
			Cause:     ErrCauseDecodeFailure,
			Err:       err,
		})
		s.metadataSink.RecordCacheLookup(string(key), false, time.Since(startTime))
		return CacheEntry{}, false
	}

	s.metadataSink.RecordCacheLookup(string(key), true, time.Since(startTime))
	return entry, true
}

func (s *Store) Save(ctx context.Context, key CacheKey, entry CacheEntry, ttl time.Duration) failure.ClassifiedError {
	callerMethod := "Store.Save"

	raw, err := encodeEntry(entry)
	if err != nil {
		cacheErr := &CacheUnavailableError{
			Message:   fmt.Sprintf("failed to encode entry: %v", err),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Err:       err,
		}
		s.recordError(callerMethod, key, cacheErr)
		return cacheErr
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.kv.SetWithExpiry(opCtx, string(key), raw, ttl); err != nil {
		cacheErr := s.classifyBackendError(opCtx, err)
		s.recordError(callerMethod, key, cacheErr)
		return cacheErr
	}
	return nil
}

func (s *Store) Close() error {
	return s.kv.Close()
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *Store) classifyBackendError(opCtx context.Context, err error) *CacheUnavailableError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		return &CacheUnavailableError{
			Message:   fmt.Sprintf("%s backend did not answer within %v", s.backend, s.opTimeout),
			Retryable: true,
			Cause:     ErrCauseTimeout,
			Err:       err,
		}
	}
	return &CacheUnavailableError{
		Message:   err.Error(),
		Retryable: true,
		Cause:     ErrCauseBackendFailure,
		Err:       err,
	}
}

func (s *Store) recordError(callerMethod string, key CacheKey, err *CacheUnavailableError) {
	s.metadataSink.RecordError(
		time.Now(),
		"magnetcache",
		callerMethod,
		mapCacheErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrCacheKey, string(key)),
			metadata.NewAttr(metadata.AttrBackend, s.backend),
		},
	)
}
