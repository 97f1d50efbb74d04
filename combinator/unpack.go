package combinator

import (
	"context"

	"github.com/shravanasati/relay/extract"
	"github.com/shravanasati/relay/service"
)

// Unpack drops the input from the accumulator and keeps the tuple.
func Unpack[I, T any](svc service.Service[I, extract.Extract[I, T]]) service.Service[I, T] {
	return service.ServiceFunc[I, T](func(ctx context.Context, in I) service.Outcome[T, I] {
		return service.MapSuccess(svc.Call(ctx, in), func(e extract.Extract[I, T]) T { return e.Values })
	})
}

// UnpackOne keeps only the single value of a one-element accumulator.
func UnpackOne[I, A any](svc service.Service[I, extract.Extract[I, extract.One[A]]]) service.Service[I, A] {
	return service.ServiceFunc[I, A](func(ctx context.Context, in I) service.Outcome[A, I] {
		return service.MapSuccess(svc.Call(ctx, in), func(e extract.Extract[I, extract.One[A]]) A { return e.Values.V0 })
	})
}

// Handle runs f on the values extracted by svc, producing the final value
// of a pipeline. It is the usual last step when an extractor chain ends in
// an endpoint.
func Handle[I, T, S any](svc service.Service[I, extract.Extract[I, T]], f func(context.Context, T) (S, error)) service.Service[I, S] {
	return Then(Unpack(svc), f)
}
