package resolver_test

import (
	"context"
	"testing"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/magnetcache"
	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestResolve_WaitsOnSearchHostBeforeFetch(t *testing.T) {
	fetcher := &fakeFetcher{body: pageWithMagnet}
	limiterMock := newRateLimiterMockForTest(t)
	limiterMock.On("Wait", mock.Anything, "search.example").Return(nil).Once()

	r := resolver.NewResolver(
		&metadata.NoopSink{},
		newTestStore(),
		fetcher,
		limiterMock,
		resolver.NewResolveParam(testTemplate, time.Second, time.Hour),
	)

	result := r.Resolve(context.Background(), "Inception", "")

	assert.Equal(t, resolver.StatusFetched, result.Status)
	assert.Equal(t, 1, fetcher.callCount())
	limiterMock.AssertExpectations(t)
}

func TestResolve_CanceledWaitSkipsFetch(t *testing.T) {
	fetcher := &fakeFetcher{body: pageWithMagnet}
	store := newTestStore()
	limiterMock := newRateLimiterMockForTest(t)
	limiterMock.On("Wait", mock.Anything, mock.Anything).Return(context.Canceled).Once()

	r := resolver.NewResolver(
		&metadata.NoopSink{},
		store,
		fetcher,
		limiterMock,
		resolver.NewResolveParam(testTemplate, time.Second, time.Hour),
	)

	result := r.Resolve(context.Background(), "Inception", "")

	assert.Equal(t, resolver.StatusError, result.Status)
	assert.False(t, result.Found)
	assert.NotEmpty(t, result.ErrorDetail)
	assert.Zero(t, fetcher.callCount())
	_, cached := store.Lookup(context.Background(), magnetcache.DeriveKey("inception"))
	assert.False(t, cached, "an interrupted wait must not be cached")
	limiterMock.AssertExpectations(t)
}

func TestResolve_CacheHitNeverWaits(t *testing.T) {
	fetcher := &fakeFetcher{body: pageWithMagnet}
	limiterMock := newRateLimiterMockForTest(t)
	limiterMock.On("Wait", mock.Anything, "search.example").Return(nil)

	r := resolver.NewResolver(
		&metadata.NoopSink{},
		newTestStore(),
		fetcher,
		limiterMock,
		resolver.NewResolveParam(testTemplate, time.Second, time.Hour),
	)

	first := r.Resolve(context.Background(), "Inception", "")
	assert.Equal(t, resolver.StatusFetched, first.Status)

	limiterMock.AssertNumberOfCalls(t, "Wait", 1)
	second := r.Resolve(context.Background(), "Inception", "")
	assert.Equal(t, resolver.StatusCached, second.Status)
	limiterMock.AssertNumberOfCalls(t, "Wait", 1)
}
