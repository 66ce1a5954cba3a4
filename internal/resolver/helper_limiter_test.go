package resolver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
)

// rateLimiterMock is a testify mock for limiter.RateLimiter
type rateLimiterMock struct {
	mock.Mock
}

func newRateLimiterMockForTest(t *testing.T) *rateLimiterMock {
	t.Helper()
	m := new(rateLimiterMock)
	m.On("SetBaseDelay", mock.Anything).Return().Maybe()
	m.On("SetJitter", mock.Anything).Return().Maybe()
	m.On("SetRandomSeed", mock.Anything).Return().Maybe()
	m.On("MarkLastFetchAsNow", mock.Anything).Return().Maybe()
	m.On("ResolveDelay", mock.Anything).Return(time.Duration(0)).Maybe()
	return m
}

func (m *rateLimiterMock) SetBaseDelay(baseDelay time.Duration) {
	m.Called(baseDelay)
}

func (m *rateLimiterMock) SetJitter(jitter time.Duration) {
	m.Called(jitter)
}

func (m *rateLimiterMock) SetRandomSeed(randomSeed int64) {
	m.Called(randomSeed)
}

func (m *rateLimiterMock) MarkLastFetchAsNow(host string) {
	m.Called(host)
}

func (m *rateLimiterMock) ResolveDelay(host string) time.Duration {
	args := m.Called(host)
	return args.Get(0).(time.Duration)
}

func (m *rateLimiterMock) Wait(ctx context.Context, host string) error {
	args := m.Called(ctx, host)
	return args.Error(0)
}
