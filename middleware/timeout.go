package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
	"github.com/shravanasati/relay/service"
)

// ErrTimeout is wrapped in the failure of a call that ran past its deadline.
var ErrTimeout = errors.New("request timed out")

// Timeout creates a timeout middleware that fails with 503 Service
// Unavailable when the wrapped service runs longer than timeout.
func Timeout(timeout time.Duration) router.Middleware {
	return TimeoutWithStatus(timeout, response.StatusServiceUnavailable)
}

// TimeoutWithStatus is Timeout with a custom failure status.
//
// The wrapped service runs on its own goroutine, on a clone of the request,
// and sees a context that is cancelled at the deadline. A decline that
// arrives in time copies the clone back into the caller's request. Past the
// deadline the clone is abandoned to the goroutine and the caller's request
// is left as it was.
func TimeoutWithStatus(timeout time.Duration, status response.StatusCode) router.Middleware {
	return func(next router.Handler) router.Handler {
		return handler(func(ctx context.Context, r *request.Request) outcome {
			tctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			call := service.Prepare(next, r.Clone())
			done := make(chan outcome, 1)
			go func() {
				defer func() {
					if rvr := recover(); rvr != nil {
						done <- failure(router.NewError(response.StatusInternalServerError, fmt.Errorf("panic: %v", rvr)))
					}
				}()
				done <- call.Await(tctx)
			}()

			expired := func() outcome {
				if err := ctx.Err(); err != nil {
					return failure(err)
				}
				return failure(router.NewError(status, fmt.Errorf("%w after %s", ErrTimeout, timeout)))
			}
			select {
			case out := <-done:
				// an answer that lost the race with the deadline is dropped
				if tctx.Err() != nil {
					return expired()
				}
				if in, ok := out.Input(); ok {
					*r = *in
					return service.Next[response.Response](r)
				}
				return out
			case <-tctx.Done():
				return expired()
			}
		})
	}
}
