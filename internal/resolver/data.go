package resolver

import (
	"context"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/magnetcache"
	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
)

type Status string

const (
	StatusCached  Status = "cached"
	StatusFetched Status = "fetched"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// FetchResult is the outcome of resolving one title.
// Identifier is set only when Found is true.
type FetchResult struct {
	Title       string
	Identifier  string
	Found       bool
	Status      Status
	ErrorDetail string
}

// TimeoutResult is the result reported for a title whose resolution did
// not finish within budget.
func TimeoutResult(title string, budget time.Duration) FetchResult {
	return FetchResult{
		Title:       title,
		Status:      StatusTimeout,
		ErrorDetail: (&ItemTimeoutError{Budget: budget}).Error(),
	}
}

// CacheStore is the part of magnetcache.Store the resolution pipeline uses.
type CacheStore interface {
	Key(query string) magnetcache.CacheKey
	Lookup(ctx context.Context, key magnetcache.CacheKey) (magnetcache.CacheEntry, bool)
	Save(ctx context.Context, key magnetcache.CacheKey, entry magnetcache.CacheEntry, ttl time.Duration) failure.ClassifiedError
}

type ResolveParam struct {
	searchUrlTemplate string
	pageLoadTimeout   time.Duration
	cacheTtl          time.Duration
}

func NewResolveParam(
	searchUrlTemplate string,
	pageLoadTimeout time.Duration,
	cacheTtl time.Duration,
) ResolveParam {
	return ResolveParam{
		searchUrlTemplate: searchUrlTemplate,
		pageLoadTimeout:   pageLoadTimeout,
		cacheTtl:          cacheTtl,
	}
}
