package resolver

import (
	"errors"
	"fmt"
	"time"

	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
)

// ErrItemTimeout matches every ItemTimeoutError via errors.Is.
var ErrItemTimeout = errors.New("item timed out")

// ItemTimeoutError is reported when a single title ran out of its budget.
// The abandoned resolution may still finish and write the cache.
type ItemTimeoutError struct {
	Budget time.Duration
}

func (e *ItemTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v", e.Budget)
}

func (e *ItemTimeoutError) Is(target error) bool {
	return target == ErrItemTimeout
}

func (e *ItemTimeoutError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

type SearchErrorCause string

const (
	ErrCauseInvalidSearchUrl SearchErrorCause = "invalid search url"
	ErrCauseUnparsablePage   SearchErrorCause = "unparsable result page"
	ErrCauseCanceled         SearchErrorCause = "canceled"
)

// SearchError covers resolution failures that are not fetch failures.
type SearchError struct {
	Message   string
	Retryable bool
	Cause     SearchErrorCause
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search error: %s: %s", e.Cause, e.Message)
}

func (e *SearchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
