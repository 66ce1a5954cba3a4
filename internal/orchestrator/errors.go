package orchestrator

import (
	"fmt"

	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
)

type ExtractionErrorCause string

const (
	ErrCauseListFetchFailed ExtractionErrorCause = "list fetch failed"
	ErrCauseListUnparsable  ExtractionErrorCause = "list unparsable"
)

// ExtractionError ends a batch before any result was emitted.
type ExtractionError struct {
	Message   string
	Retryable bool
	Cause     ExtractionErrorCause
	SourceURL string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error: %s: %s", e.Cause, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapExtractionErrorToMetadataCause maps orchestrator-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseListFetchFailed:
		return metadata.CauseNetworkFailure
	case ErrCauseListUnparsable:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
