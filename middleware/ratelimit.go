package middleware

import (
	"context"
	"math"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
)

// RateLimitOptions configures RateLimiter.
type RateLimitOptions struct {
	// RPS is the sustained number of requests per second allowed per key.
	RPS float64
	// Burst is the number of requests a key may make at once.
	Burst int
	// IdleTTL is how long an unused key keeps its bucket. Default 10m.
	IdleTTL time.Duration
	// KeyFunc picks the bucket for a request. Default is the remote host.
	KeyFunc func(r *request.Request) string
}

// RateLimiter applies a token bucket per key and evicts idle entries every
// few hundred calls.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	keyFunc func(r *request.Request) string
	now     func() time.Time

	mu    sync.Mutex
	byKey map[string]*limiterEntry
	hits  uint64
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter returns nil if RPS or Burst is not positive. A nil
// RateLimiter allows everything.
func NewRateLimiter(opts RateLimitOptions) *RateLimiter {
	if opts.RPS <= 0 || opts.Burst <= 0 {
		return nil
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 10 * time.Minute
	}
	if opts.KeyFunc == nil {
		opts.KeyFunc = RemoteHost
	}
	return &RateLimiter{
		limit:   rate.Limit(opts.RPS),
		burst:   opts.Burst,
		idleTTL: opts.IdleTTL,
		keyFunc: opts.KeyFunc,
		now:     time.Now,
		byKey:   make(map[string]*limiterEntry),
	}
}

// RemoteHost is the host part of the request's remote address.
func RemoteHost(r *request.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Reserve takes one token for key at now. It reports whether the token was
// available, and if not, how long until it would be.
func (l *RateLimiter) Reserve(key string, now time.Time) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byKey[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = e
	}
	e.lastSeen = now

	res := e.limiter.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	allowed := res.OK() && delay == 0
	if !allowed {
		res.CancelAt(now)
	}

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed, delay
}

// Allow reports whether one token can be consumed for the key at now.
func (l *RateLimiter) Allow(key string, now time.Time) bool {
	ok, _ := l.Reserve(key, now)
	return ok
}

// Len is the number of keys currently tracked.
func (l *RateLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKey)
}

// Handler answers 429 Too Many Requests with a Retry-After header once a
// key runs out of tokens.
func (l *RateLimiter) Handler(next router.Handler) router.Handler {
	if l == nil {
		return next
	}
	return handler(func(ctx context.Context, r *request.Request) outcome {
		ok, delay := l.Reserve(l.keyFunc(r), l.now())
		if ok {
			return next.Call(ctx, r)
		}
		retry := int(math.Ceil(delay.Seconds()))
		if retry < 1 {
			retry = 1
		}
		return reply(response.NewTextResponse("too many requests").
			WithStatusCode(response.StatusTooManyRequests).
			WithHeader("retry-after", strconv.Itoa(retry)))
	})
}

// RateLimit limits every remote host to rps requests per second with the
// given burst.
func RateLimit(rps float64, burst int) router.Middleware {
	return NewRateLimiter(RateLimitOptions{RPS: rps, Burst: burst}).Handler
}
