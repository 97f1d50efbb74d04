package combinator

import (
	"context"

	"github.com/shravanasati/relay/extract"
	"github.com/shravanasati/relay/service"
)

// Map transforms the values svc extracted into a single value. The input
// stays in the accumulator so the result can be sequenced further.
func Map[I, T, U any](svc service.Service[I, extract.Extract[I, T]], f func(T) U) service.Service[I, extract.Extract[I, extract.One[U]]] {
	type out = service.Outcome[extract.Extract[I, extract.One[U]], I]

	return service.ServiceFunc[I, extract.Extract[I, extract.One[U]]](func(ctx context.Context, in I) out {
		st := newStage()
		if err := st.proceed(ctx); err != nil {
			return service.Failure[extract.Extract[I, extract.One[U]], I](err)
		}
		o := svc.Call(ctx, in)
		st.finish()
		return service.MapSuccess(o, func(e extract.Extract[I, T]) extract.Extract[I, extract.One[U]] {
			return extract.New(e.Input, extract.Of(f(e.Values)))
		})
	})
}

// AndThen feeds the values svc extracted into a fallible transform. The
// transform is a second stage: it does not run when ctx is done by the time
// svc returns.
func AndThen[I, T, U any](svc service.Service[I, extract.Extract[I, T]], f func(context.Context, T) (U, error)) service.Service[I, extract.Extract[I, extract.One[U]]] {
	type out = service.Outcome[extract.Extract[I, extract.One[U]], I]

	return service.ServiceFunc[I, extract.Extract[I, extract.One[U]]](func(ctx context.Context, in I) out {
		st := newStage()
		if err := st.proceed(ctx); err != nil {
			return service.Failure[extract.Extract[I, extract.One[U]], I](err)
		}
		o := svc.Call(ctx, in)
		e, ok := o.Value()
		if !ok {
			st.finish()
			return service.Recast[extract.Extract[I, extract.One[U]]](o)
		}

		if err := st.proceed(ctx); err != nil {
			return service.Failure[extract.Extract[I, extract.One[U]], I](err)
		}
		u, err := f(ctx, e.Values)
		st.finish()
		if err != nil {
			return service.Failure[extract.Extract[I, extract.One[U]], I](err)
		}
		return extract.New(e.Input, extract.Of(u)).IntoOutcome()
	})
}

// Then feeds the whole success value of svc into a fallible transform.
// Unlike AndThen it works on any service, not only extractors.
func Then[I, S, U any](svc service.Service[I, S], f func(context.Context, S) (U, error)) service.Service[I, U] {
	return service.ServiceFunc[I, U](func(ctx context.Context, in I) service.Outcome[U, I] {
		st := newStage()
		if err := st.proceed(ctx); err != nil {
			return service.Failure[U, I](err)
		}
		o := svc.Call(ctx, in)
		v, ok := o.Value()
		if !ok {
			st.finish()
			return service.Recast[U](o)
		}

		if err := st.proceed(ctx); err != nil {
			return service.Failure[U, I](err)
		}
		u, err := f(ctx, v)
		st.finish()
		return service.FromResult[U, I](u, err)
	})
}
