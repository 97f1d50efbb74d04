package middleware

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
)

var safeMethods = []string{"GET", "HEAD", "OPTIONS", "TRACE"}

var defaultDenyHandler = handler(func(_ context.Context, _ *request.Request) outcome {
	return reply(response.NewBaseResponse().WithStatusCode(response.StatusForbidden))
})

func validateOrigin(o string) error {
	u, err := url.Parse(o)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", o, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("invalid origin %q: scheme is required", o)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid origin %q: host is required", o)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid origin %q: path, query, and fragment are not allowed", o)
	}
	return nil
}

// CORF protects a service against Cross-Origin Request Forgery. Use NewCORF
// and CORF.Handler. The checks follow net/http's CrossOriginProtection.
type CORF struct {
	trustedMu      sync.RWMutex
	trustedOrigins map[string]bool
	deny           atomic.Pointer[router.Handler] // if nil, falls back to defaultDenyHandler
}

// NewCORF constructs a CORF instance. Errors are returned when trusted
// origins are not valid origins.
func NewCORF(trustedOrigins ...string) (*CORF, error) {
	c := &CORF{trustedOrigins: make(map[string]bool)}
	for _, or := range trustedOrigins {
		if err := validateOrigin(or); err != nil {
			return nil, err
		}
		c.trustedOrigins[or] = true
	}
	return c, nil
}

// AddTrustedOrigin adds a trusted origin to this CORF instance.
func (c *CORF) AddTrustedOrigin(origin string) error {
	if err := validateOrigin(origin); err != nil {
		return err
	}
	c.trustedMu.Lock()
	if c.trustedOrigins == nil {
		c.trustedOrigins = make(map[string]bool)
	}
	c.trustedOrigins[origin] = true
	c.trustedMu.Unlock()
	return nil
}

// SetDenyHandler sets a per-instance deny handler; pass nil to use default.
func (c *CORF) SetDenyHandler(h router.Handler) {
	if h == nil {
		c.deny.Store(nil)
		return
	}
	c.deny.Store(&h)
}

func (c *CORF) effectiveDeny() router.Handler {
	if p := c.deny.Load(); p != nil {
		return *p
	}
	return defaultDenyHandler
}

func (c *CORF) allowed(r *request.Request) bool {
	if slices.Contains(safeMethods, r.Method) {
		return true
	}

	origin := r.Headers.Get("Origin")
	c.trustedMu.RLock()
	trusted := origin != "" && c.trustedOrigins[origin]
	c.trustedMu.RUnlock()
	if trusted {
		return true
	}

	if secFetchSite := strings.ToLower(r.Headers.Get("Sec-Fetch-Site")); secFetchSite != "" {
		return secFetchSite == "same-origin" || secFetchSite == "none"
	}

	if origin == "" {
		// neither header: not a browser request
		return true
	}

	o, err := url.Parse(origin)
	return err == nil && o.Host == r.Headers.Get("Host")
}

// Handler returns a middleware-wrapped handler that enforces CORF rules.
func (c *CORF) Handler(next router.Handler) router.Handler {
	return handler(func(ctx context.Context, r *request.Request) outcome {
		if c.allowed(r) {
			return next.Call(ctx, r)
		}
		return c.effectiveDeny().Call(ctx, r)
	})
}
