package combinator

import (
	"context"
	"errors"

	"github.com/shravanasati/relay/service"
)

// MapErr rewrites the failure error of svc with f. Successes and declines
// pass through.
func MapErr[I, S any](svc service.Service[I, S], f func(error) error) service.Service[I, S] {
	return service.ServiceFunc[I, S](func(ctx context.Context, in I) service.Outcome[S, I] {
		if err := ctx.Err(); err != nil {
			return service.Failure[S, I](f(err))
		}
		return service.MapFailure(svc.Call(ctx, in), f)
	})
}

// ErrInto coerces every failure of svc into the error type E. A failure
// whose chain already holds an E is returned as that E; anything else is
// handed to wrap.
func ErrInto[E error, I, S any](svc service.Service[I, S], wrap func(error) E) service.Service[I, S] {
	return MapErr(svc, func(err error) error {
		var target E
		if errors.As(err, &target) {
			return target
		}
		return wrap(err)
	})
}

// Require turns a decline into a failure built from the declined input.
// Services wrapped with Require never decline.
func Require[I, S any](svc service.Service[I, S], f func(I) error) service.Service[I, S] {
	return service.ServiceFunc[I, S](func(ctx context.Context, in I) service.Outcome[S, I] {
		o := svc.Call(ctx, in)
		if next, ok := o.Input(); ok {
			return service.Failure[S, I](f(next))
		}
		return o
	})
}
