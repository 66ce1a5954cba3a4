package magnetcache

import (
	"fmt"

	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
)

type CacheErrorCause string

const (
	ErrCauseBackendFailure CacheErrorCause = "backend failure"
	ErrCauseTimeout        CacheErrorCause = "timeout"
	ErrCauseDecodeFailure  CacheErrorCause = "decode failure"
	ErrCauseEncodeFailure  CacheErrorCause = "encode failure"
)

// CacheUnavailableError reports a cache operation that could not complete.
// Lookups never return it; they degrade to a miss after recording it.
type CacheUnavailableError struct {
	Message   string
	Retryable bool
	Cause     CacheErrorCause
	Err       error
}

func (e *CacheUnavailableError) Error() string {
	return fmt.Sprintf("cache unavailable: %s: %s", e.Cause, e.Message)
}

func (e *CacheUnavailableError) Unwrap() error {
	return e.Err
}

func (e *CacheUnavailableError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapCacheErrorToMetadataCause maps cache-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapCacheErrorToMetadataCause(err *CacheUnavailableError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseBackendFailure:
		return metadata.CauseStorageFailure
	case ErrCauseTimeout:
		return metadata.CauseTimeout
	case ErrCauseDecodeFailure, ErrCauseEncodeFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
