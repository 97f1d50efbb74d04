package combinator

import (
	"context"

	"github.com/shravanasati/relay/service"
)

// Or tries left, and only if left declines, tries right against the input
// left handed back. Results are tagged with the arm that produced them;
// failures are wrapped in *service.EitherError. A failure from left is
// final: right is never tried after a failure.
func Or[I, L, R any](left service.Service[I, L], right service.Service[I, R]) service.Service[I, service.Either[L, R]] {
	type out = service.Outcome[service.Either[L, R], I]

	return service.ServiceFunc[I, service.Either[L, R]](func(ctx context.Context, in I) out {
		st := newStage()
		if err := st.proceed(ctx); err != nil {
			return service.Failure[service.Either[L, R], I](err)
		}

		lout := left.Call(ctx, in)
		switch lout.Kind() {
		case service.KindSuccess:
			st.finish()
			v, _ := lout.Value()
			return service.Success[service.Either[L, R], I](service.Left[L, R](v))
		case service.KindFailure:
			st.finish()
			return service.Failure[service.Either[L, R], I](&service.EitherError{Side: service.SideLeft, Err: lout.Err()})
		}

		next, ok := lout.Input()
		if !ok {
			panic("combinator: left alternative returned an invalid outcome")
		}
		if err := st.proceed(ctx); err != nil {
			return service.Failure[service.Either[L, R], I](err)
		}

		rout := right.Call(ctx, next)
		st.finish()
		switch rout.Kind() {
		case service.KindSuccess:
			v, _ := rout.Value()
			return service.Success[service.Either[L, R], I](service.Right[L, R](v))
		case service.KindFailure:
			return service.Failure[service.Either[L, R], I](&service.EitherError{Side: service.SideRight, Err: rout.Err()})
		default:
			return service.Recast[service.Either[L, R]](rout)
		}
	})
}

// Unify collapses the tagged result of an Or whose arms produce the same
// type. Failures lose their arm tag as well.
func Unify[I, T any](svc service.Service[I, service.Either[T, T]]) service.Service[I, T] {
	return service.ServiceFunc[I, T](func(ctx context.Context, in I) service.Outcome[T, I] {
		o := svc.Call(ctx, in)
		switch o.Kind() {
		case service.KindSuccess:
			v, _ := o.Value()
			return service.Success[T, I](service.Merge(v))
		case service.KindFailure:
			err := o.Err()
			if ee, ok := err.(*service.EitherError); ok {
				err = ee.Err
			}
			return service.Failure[T, I](err)
		default:
			return service.Recast[T](o)
		}
	})
}

// OrElse is Unify(Or(left, right)) for alternatives of the same type.
func OrElse[I, T any](left, right service.Service[I, T]) service.Service[I, T] {
	return Unify(Or(left, right))
}

// First tries each service in order and returns the first outcome that is
// not a decline. With no services it declines everything.
func First[I, T any](svcs ...service.Service[I, T]) service.Service[I, T] {
	if len(svcs) == 0 {
		return service.ServiceFunc[I, T](func(_ context.Context, in I) service.Outcome[T, I] {
			return service.Next[T](in)
		})
	}
	acc := svcs[0]
	for _, s := range svcs[1:] {
		acc = OrElse(acc, s)
	}
	return acc
}
