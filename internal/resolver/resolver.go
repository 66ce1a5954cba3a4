package resolver

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/docquery"
	"github.com/rohmanhakim/magnet-resolver/internal/fetcher"
	"github.com/rohmanhakim/magnet-resolver/internal/magnetcache"
	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
	"github.com/rohmanhakim/magnet-resolver/pkg/limiter"
	"github.com/rohmanhakim/magnet-resolver/pkg/urlutil"
	"golang.org/x/sync/singleflight"
)

/*
Resolver turns one title into one FetchResult.

Per call:
  - at most one cache lookup, one page fetch and one parse
  - a cache write only after the fetch reached the source and the page
    parsed, whether or not a link was on it
  - no cache write on a failed fetch, so the next run retries

Concurrent calls for the same cache key share a single resolution. A call
abandoned by a timed-out caller keeps running and is joined, not repeated,
by the next caller asking for the same title.
*/
type Resolver struct {
	metadataSink metadata.MetadataSink
	store        CacheStore
	pageFetcher  fetcher.PageFetcher
	rateLimiter  limiter.RateLimiter
	param        ResolveParam
	group        singleflight.Group
	now          func() time.Time
}

func NewResolver(
	metadataSink metadata.MetadataSink,
	store CacheStore,
	pageFetcher fetcher.PageFetcher,
	rateLimiter limiter.RateLimiter,
	param ResolveParam,
) *Resolver {
	return &Resolver{
		metadataSink: metadataSink,
		store:        store,
		pageFetcher:  pageFetcher,
		rateLimiter:  rateLimiter,
		param:        param,
		now:          time.Now,
	}
}

// SearchQuery is the text sent to the search source for title and hint.
func SearchQuery(title string, qualityHint string) string {
	return strings.TrimSpace(title + " " + qualityHint)
}

func (r *Resolver) Resolve(ctx context.Context, title string, qualityHint string) FetchResult {
	query := SearchQuery(title, qualityHint)
	key := r.store.Key(title + " " + qualityHint)

	v, _, _ := r.group.Do(string(key), func() (any, error) {
		return r.resolve(ctx, title, query, key), nil
	})
	result := v.(FetchResult)
	// a joined call may have been started for a differently spelled title
	result.Title = title
	return result
}

func (r *Resolver) resolve(ctx context.Context, title string, query string, key magnetcache.CacheKey) FetchResult {
	callerMethod := "Resolver.Resolve"

	if entry, ok := r.store.Lookup(ctx, key); ok {
		return FetchResult{
			Title:      title,
			Identifier: entry.Identifier,
			Found:      entry.Found(),
			Status:     StatusCached,
		}
	}

	searchUrl, err := r.searchUrl(query)
	if err != nil {
		r.recordError(callerMethod, title, metadata.CauseUnknown, err)
		return errorResult(title, err)
	}

	if r.rateLimiter != nil {
		if err := r.rateLimiter.Wait(ctx, searchUrl.Hostname()); err != nil {
			searchErr := &SearchError{
				Message:   err.Error(),
				Retryable: true,
				Cause:     ErrCauseCanceled,
			}
			return errorResult(title, searchErr)
		}
	}

	page, fetchErr := r.pageFetcher.Fetch(ctx, fetcher.NewFetchParam(searchUrl, r.param.pageLoadTimeout))
	if fetchErr != nil {
		// the fetcher already recorded the failure
		return errorResult(title, fetchErr)
	}

	doc, parseErr := docquery.Parse(page.Body())
	if parseErr != nil {
		searchErr := &SearchError{
			Message:   parseErr.Error(),
			Retryable: true,
			Cause:     ErrCauseUnparsablePage,
		}
		r.recordError(callerMethod, title, metadata.CauseContentInvalid, searchErr)
		return errorResult(title, searchErr)
	}

	link, found := docquery.ExtractFirstMagnetLink(doc)

	entry := magnetcache.CacheEntry{
		Query:      query,
		Identifier: link,
		SearchURL:  searchUrl.String(),
		FetchedAt:  r.now(),
	}
	// best effort; the store recorded the failure
	_ = r.store.Save(ctx, key, entry, r.param.cacheTtl)

	return FetchResult{
		Title:      title,
		Identifier: link,
		Found:      found,
		Status:     StatusFetched,
	}
}

func (r *Resolver) searchUrl(query string) (url.URL, failure.ClassifiedError) {
	raw := urlutil.ExpandSearchTemplate(r.param.searchUrlTemplate, query)
	u, ok := urlutil.ParseHTTPURL(raw)
	if !ok {
		return url.URL{}, &SearchError{
			Message:   fmt.Sprintf("template produced %q", raw),
			Retryable: false,
			Cause:     ErrCauseInvalidSearchUrl,
		}
	}
	return u, nil
}

func (r *Resolver) recordError(callerMethod string, title string, cause metadata.ErrorCause, err error) {
	r.metadataSink.RecordError(
		time.Now(),
		"resolver",
		callerMethod,
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrTitle, title),
		},
	)
}

func errorResult(title string, err error) FetchResult {
	return FetchResult{
		Title:       title,
		Status:      StatusError,
		ErrorDetail: err.Error(),
	}
}
