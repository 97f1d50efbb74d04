// Package extract holds the accumulator that sequenced services build as a
// pipeline runs. A stage that takes part in sequencing succeeds with an
// Extract: the input it was given, handed back by value, together with the
// flat tuple of values extracted so far.
package extract

import (
	"context"

	"github.com/shravanasati/relay/service"
)

// Extract pairs the input, handed back after a stage used it, with the
// values extracted from it.
type Extract[I, T any] struct {
	Input  I
	Values T
}

// New builds an Extract.
func New[I, T any](in I, values T) Extract[I, T] {
	return Extract[I, T]{Input: in, Values: values}
}

// Split returns the input and the extracted values.
func (e Extract[I, T]) Split() (I, T) { return e.Input, e.Values }

// Values returns the extracted values of e and drops the input.
func Values[I, T any](e Extract[I, T]) T { return e.Values }

// IntoOutcome presents an Extract as an unconditional success.
func (e Extract[I, T]) IntoOutcome() service.Outcome[Extract[I, T], I] {
	return service.Success[Extract[I, T], I](e)
}

// Any succeeds on every input without extracting anything.
func Any[I any]() service.Service[I, Extract[I, Unit]] {
	return service.ServiceFunc[I, Extract[I, Unit]](func(_ context.Context, in I) service.Outcome[Extract[I, Unit], I] {
		return New(in, Unit{}).IntoOutcome()
	})
}

// State succeeds on every input with a copy of s.
func State[I, S any](s S) service.Service[I, Extract[I, One[S]]] {
	return service.ServiceFunc[I, Extract[I, One[S]]](func(_ context.Context, in I) service.Outcome[Extract[I, One[S]], I] {
		return New(in, Of(s)).IntoOutcome()
	})
}

// Func builds a single-value extractor from a fallible function that reads
// the input without consuming it.
func Func[I, A any](f func(ctx context.Context, in I) (A, error)) service.Service[I, Extract[I, One[A]]] {
	return service.ServiceFunc[I, Extract[I, One[A]]](func(ctx context.Context, in I) service.Outcome[Extract[I, One[A]], I] {
		v, err := f(ctx, in)
		if err != nil {
			return service.Failure[Extract[I, One[A]], I](err)
		}
		return New(in, Of(v)).IntoOutcome()
	})
}

// Optional builds a single-value extractor that declines the input when f
// reports no value.
func Optional[I, A any](f func(ctx context.Context, in I) (A, bool)) service.Service[I, Extract[I, One[A]]] {
	return service.ServiceFunc[I, Extract[I, One[A]]](func(ctx context.Context, in I) service.Outcome[Extract[I, One[A]], I] {
		v, ok := f(ctx, in)
		if !ok {
			return service.Next[Extract[I, One[A]]](in)
		}
		return New(in, Of(v)).IntoOutcome()
	})
}

// Filter builds an extractor that extracts nothing and declines the input
// when pred is false.
func Filter[I any](pred func(in I) bool) service.Service[I, Extract[I, Unit]] {
	return service.ServiceFunc[I, Extract[I, Unit]](func(_ context.Context, in I) service.Outcome[Extract[I, Unit], I] {
		if !pred(in) {
			return service.Next[Extract[I, Unit]](in)
		}
		return New(in, Unit{}).IntoOutcome()
	})
}
