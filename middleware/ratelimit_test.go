package middleware

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
)

func TestNewRateLimiterInvalid(t *testing.T) {
	assert.Nil(t, NewRateLimiter(RateLimitOptions{RPS: 0, Burst: 1}))
	assert.Nil(t, NewRateLimiter(RateLimitOptions{RPS: 1, Burst: 0}))

	var l *RateLimiter
	assert.True(t, l.Allow("k", time.Now()))
	assert.Zero(t, l.Len())
}

func TestRateLimiterAllow(t *testing.T) {
	l := NewRateLimiter(RateLimitOptions{RPS: 1, Burst: 2})
	now := time.Unix(1000, 0)

	assert.True(t, l.Allow("a", now))
	assert.True(t, l.Allow("a", now))
	assert.False(t, l.Allow("a", now))
	assert.True(t, l.Allow("b", now), "keys have separate buckets")
	assert.True(t, l.Allow("", now), "empty key is never limited")

	assert.True(t, l.Allow("a", now.Add(time.Second)))

	ok, delay := l.Reserve("a", now.Add(time.Second))
	assert.False(t, ok)
	assert.InDelta(t, time.Second, delay, float64(10*time.Millisecond))
}

func TestRateLimiterEvictsIdleKeys(t *testing.T) {
	l := NewRateLimiter(RateLimitOptions{RPS: 100, Burst: 100, IdleTTL: time.Minute})
	start := time.Unix(1000, 0)

	for i := range 100 {
		l.Allow(fmt.Sprintf("old-%d", i), start)
	}
	require.Equal(t, 100, l.Len())

	later := start.Add(2 * time.Minute)
	for i := range 412 {
		l.Allow("fresh", later.Add(time.Duration(i)*time.Millisecond))
	}
	assert.Equal(t, 1, l.Len())
}

func TestRateLimitHandler(t *testing.T) {
	l := NewRateLimiter(RateLimitOptions{
		RPS:     1,
		Burst:   1,
		KeyFunc: func(r *request.Request) string { return r.Headers.Get("x-api-key") },
	})
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }
	h := l.Handler(okHandler)

	req := func(key string) *request.Request {
		return newReq("GET", "/").WithHeader("x-api-key", key)
	}

	assert.Equal(t, response.StatusOK, call(t, h, req("k1")).GetStatusCode())

	limited := call(t, h, req("k1"))
	assert.Equal(t, response.StatusTooManyRequests, limited.GetStatusCode())
	assert.Equal(t, "1", limited.GetHeaders().Get("retry-after"))

	assert.Equal(t, response.StatusOK, call(t, h, req("k2")).GetStatusCode())
}

func TestRemoteHost(t *testing.T) {
	r := newReq("GET", "/")
	r.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", RemoteHost(r))
	r.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", RemoteHost(r))

	assert.NotNil(t, RateLimit(0, 0)(okHandler))
}
