// Package combinator builds services out of services: sequencing (And),
// alternation (Or, Unify), mapping (Map, AndThen, Then), error translation
// (MapErr, ErrInto), requirement gating (Require) and unpacking.
//
// Every combinator runs its inner services on the calling goroutine,
// strictly in order. A cancelled context stops the call before the next
// inner service starts; the later services are never invoked.
package combinator

import (
	"context"

	"github.com/shravanasati/relay/extract"
	"github.com/shravanasati/relay/service"
)

// And runs left, then runs right against the input left handed back, and
// concatenates the two tuples of extracted values with combine. A failure
// or decline from left is returned without running right.
func And[I, L, R, O any](
	left service.Service[I, extract.Extract[I, L]],
	right service.Service[I, extract.Extract[I, R]],
	combine func(L, R) O,
) service.Service[I, extract.Extract[I, O]] {
	return service.ServiceFunc[I, extract.Extract[I, O]](func(ctx context.Context, in I) service.Outcome[extract.Extract[I, O], I] {
		st := newStage()
		if err := st.proceed(ctx); err != nil {
			return service.Failure[extract.Extract[I, O], I](err)
		}

		lout := left.Call(ctx, in)
		lv, ok := lout.Value()
		if !ok {
			st.finish()
			return service.Recast[extract.Extract[I, O]](lout)
		}

		if err := st.proceed(ctx); err != nil {
			return service.Failure[extract.Extract[I, O], I](err)
		}

		rout := right.Call(ctx, lv.Input)
		rv, ok := rout.Value()
		st.finish()
		if !ok {
			return service.Recast[extract.Extract[I, O]](rout)
		}
		return extract.New(rv.Input, combine(lv.Values, rv.Values)).IntoOutcome()
	})
}

// And2 sequences two single-value extractors into a pair.
func And2[I, A, B any](
	a service.Service[I, extract.Extract[I, extract.One[A]]],
	b service.Service[I, extract.Extract[I, extract.One[B]]],
) service.Service[I, extract.Extract[I, extract.Two[A, B]]] {
	return And(a, b, extract.Concat11[A, B])
}

// And3 sequences three single-value extractors into a triple.
func And3[I, A, B, C any](
	a service.Service[I, extract.Extract[I, extract.One[A]]],
	b service.Service[I, extract.Extract[I, extract.One[B]]],
	c service.Service[I, extract.Extract[I, extract.One[C]]],
) service.Service[I, extract.Extract[I, extract.Three[A, B, C]]] {
	return And(And2(a, b), c, extract.Concat21[A, B, C])
}

// And4 sequences four single-value extractors into a quadruple.
func And4[I, A, B, C, D any](
	a service.Service[I, extract.Extract[I, extract.One[A]]],
	b service.Service[I, extract.Extract[I, extract.One[B]]],
	c service.Service[I, extract.Extract[I, extract.One[C]]],
	d service.Service[I, extract.Extract[I, extract.One[D]]],
) service.Service[I, extract.Extract[I, extract.Four[A, B, C, D]]] {
	return And(And3(a, b, c), d, extract.Concat31[A, B, C, D])
}

// Guard runs a filter that extracts nothing before svc, keeping svc's
// values unchanged. It is And with the unit tuple on the left.
func Guard[I, T any](
	filter service.Service[I, extract.Extract[I, extract.Unit]],
	svc service.Service[I, extract.Extract[I, T]],
) service.Service[I, extract.Extract[I, T]] {
	return And(filter, svc, extract.Concat0X[T])
}
