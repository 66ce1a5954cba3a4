package docquery

import (
	"fmt"

	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
)

type ParseErrorCause string

const (
	ErrCauseEmptyDocument ParseErrorCause = "empty document"
	ErrCauseNotHTML       ParseErrorCause = "not html"
)

type ParseError struct {
	Message   string
	Retryable bool
	Cause     ParseErrorCause
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Cause)
}

func (e *ParseError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
