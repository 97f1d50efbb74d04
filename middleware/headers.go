package middleware

import (
	"context"
	"fmt"

	"github.com/shravanasati/relay/headers"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/router"
)

// Headers adds fixed headers to every reply. Each line has the form
// "Name: value"; a malformed line is an error. Headers the reply already
// carries are left alone.
func Headers(lines ...string) (router.Middleware, error) {
	extra := headers.NewHeaders()
	for _, line := range lines {
		if err := extra.ParseFieldLine([]byte(line)); err != nil {
			return nil, fmt.Errorf("header %q: %w", line, err)
		}
	}

	return func(next router.Handler) router.Handler {
		return handler(func(ctx context.Context, r *request.Request) outcome {
			out := next.Call(ctx, r)
			if resp, ok := out.Value(); ok {
				h := resp.GetHeaders()
				for k, v := range extra.All() {
					if !h.Has(k) {
						h.Set(k, v)
					}
				}
			}
			return out
		})
	}, nil
}
