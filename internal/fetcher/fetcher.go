package fetcher

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
)

// PageFetcher loads one page within the load timeout of the param.
// Implementations must be safe for concurrent use.
type PageFetcher interface {
	Fetch(
		ctx context.Context,
		fetchParam FetchParam,
	) (Page, failure.ClassifiedError)
}

// contextFailure classifies a failure that happened after ctx ended.
func contextFailure(ctx context.Context, message string) *FetchError {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &FetchError{
			Message:   message,
			Retryable: false,
			Cause:     ErrCauseCanceled,
		}
	}
	return &FetchError{
		Message:   message,
		Retryable: true,
		Cause:     ErrCauseTimeout,
	}
}

func recordFetchError(
	sink metadata.MetadataSink,
	callerMethod string,
	fetchUrl url.URL,
	err failure.ClassifiedError,
) {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		sink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
				metadata.NewAttr(metadata.AttrHost, fetchUrl.Hostname()),
			},
		)
	}
}
