package service

import (
	"context"
	"fmt"
)

// Box erases the success type of svc. Heterogeneous pipelines are stored
// behind this one stage interface at the cost of an indirection per call.
func Box[I, S any](svc Service[I, S]) Service[I, any] {
	return ServiceFunc[I, any](func(ctx context.Context, in I) Outcome[any, I] {
		return MapSuccess(svc.Call(ctx, in), func(v S) any { return v })
	})
}

// Unbox recovers a typed service from a boxed one. A success value of
// another type becomes a failure wrapping ErrUnboxType.
func Unbox[S, I any](svc Service[I, any]) Service[I, S] {
	return ServiceFunc[I, S](func(ctx context.Context, in I) Outcome[S, I] {
		out := svc.Call(ctx, in)
		v, ok := out.Value()
		if !ok {
			return Recast[S](out)
		}
		typed, ok := v.(S)
		if !ok {
			return Failure[S, I](fmt.Errorf("%w: %T", ErrUnboxType, v))
		}
		return Success[S, I](typed)
	})
}
