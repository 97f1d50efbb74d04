package service

import "context"

// IntoOutcome is implemented by result shapes that know how to present
// themselves as an Outcome. Outcome implements it trivially; accumulated
// extractions implement it as an unconditional success.
type IntoOutcome[S, I any] interface {
	IntoOutcome() Outcome[S, I]
}

// FromResult interprets a Go (value, error) pair: a non-nil error is a
// failure, anything else a success.
func FromResult[S, I any](value S, err error) Outcome[S, I] {
	if err != nil {
		return Failure[S, I](err)
	}
	return Success[S, I](value)
}

// FromOptional interprets a (value, ok) pair: a missing value declines in.
func FromOptional[S, I any](value S, ok bool, in I) Outcome[S, I] {
	if !ok {
		return Next[S, I](in)
	}
	return Success[S, I](value)
}

// Lift turns a function that always produces a value into a service that
// always succeeds.
func Lift[I, S any](f func(ctx context.Context, in I) S) Service[I, S] {
	return ServiceFunc[I, S](func(ctx context.Context, in I) Outcome[S, I] {
		return Success[S, I](f(ctx, in))
	})
}

// Fallible turns a function returning (value, error) into a service.
func Fallible[I, S any](f func(ctx context.Context, in I) (S, error)) Service[I, S] {
	return ServiceFunc[I, S](func(ctx context.Context, in I) Outcome[S, I] {
		v, err := f(ctx, in)
		return FromResult[S, I](v, err)
	})
}

// Optional turns a function returning (value, ok) into a service that
// declines its input when ok is false.
func Optional[I, S any](f func(ctx context.Context, in I) (S, bool)) Service[I, S] {
	return ServiceFunc[I, S](func(ctx context.Context, in I) Outcome[S, I] {
		v, ok := f(ctx, in)
		return FromOptional(v, ok, in)
	})
}

// Adapt turns a function returning any IntoOutcome shape into a service.
// The success type usually has to be spelled out: Adapt[I, S](f).
func Adapt[I, S any, O IntoOutcome[S, I]](f func(ctx context.Context, in I) O) Service[I, S] {
	return ServiceFunc[I, S](func(ctx context.Context, in I) Outcome[S, I] {
		return f(ctx, in).IntoOutcome()
	})
}
