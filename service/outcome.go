package service

import "fmt"

// Kind tells which of the three variants an Outcome holds.
type Kind uint8

const (
	// KindInvalid is the kind of the zero Outcome. Services must never return it.
	KindInvalid Kind = iota
	KindSuccess
	KindFailure
	// KindNext means the service declined the input. The input is handed back
	// untouched so that another candidate can try it.
	KindNext
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	case KindNext:
		return "next"
	default:
		return "invalid"
	}
}

// Outcome is the result of calling a Service with an input of type I.
// It holds exactly one of a success value, a failure error, or the input
// itself when the service declined it.
type Outcome[S, I any] struct {
	kind  Kind
	value S
	err   error
	input I
}

// Success builds a successful outcome.
func Success[S, I any](value S) Outcome[S, I] {
	return Outcome[S, I]{kind: KindSuccess, value: value}
}

// Failure builds a failed outcome. A nil error is replaced by ErrNilFailure
// so that a failure is always observable through Err.
func Failure[S, I any](err error) Outcome[S, I] {
	if err == nil {
		err = ErrNilFailure
	}
	return Outcome[S, I]{kind: KindFailure, err: err}
}

// Next builds an outcome that declines the input and hands it back.
func Next[S, I any](input I) Outcome[S, I] {
	return Outcome[S, I]{kind: KindNext, input: input}
}

func (o Outcome[S, I]) Kind() Kind      { return o.kind }
func (o Outcome[S, I]) IsSuccess() bool { return o.kind == KindSuccess }
func (o Outcome[S, I]) IsFailure() bool { return o.kind == KindFailure }
func (o Outcome[S, I]) IsNext() bool    { return o.kind == KindNext }

// Value returns the success value and whether the outcome is a success.
func (o Outcome[S, I]) Value() (S, bool) {
	return o.value, o.kind == KindSuccess
}

// Err returns the failure error, or nil if the outcome is not a failure.
func (o Outcome[S, I]) Err() error {
	if o.kind != KindFailure {
		return nil
	}
	return o.err
}

// Input returns the declined input and whether the outcome is a decline.
func (o Outcome[S, I]) Input() (I, bool) {
	return o.input, o.kind == KindNext
}

// IntoOutcome makes every Outcome trivially convertible to itself.
func (o Outcome[S, I]) IntoOutcome() Outcome[S, I] { return o }

func (o Outcome[S, I]) String() string {
	switch o.kind {
	case KindSuccess:
		return fmt.Sprintf("Success(%v)", o.value)
	case KindFailure:
		return fmt.Sprintf("Failure(%v)", o.err)
	case KindNext:
		return "Next"
	default:
		return "Invalid"
	}
}

// Recast changes the success type of an outcome that is known not to be a
// success. Failures and declines carry no success value, so they move between
// success types unchanged. Recasting a success or the zero Outcome panics.
func Recast[U, S, I any](o Outcome[S, I]) Outcome[U, I] {
	switch o.kind {
	case KindFailure:
		return Outcome[U, I]{kind: KindFailure, err: o.err}
	case KindNext:
		return Outcome[U, I]{kind: KindNext, input: o.input}
	case KindSuccess:
		panic("service: recast of a success outcome")
	default:
		panic("service: recast of an invalid outcome")
	}
}

// MapSuccess applies f to the success value. Failures and declines pass
// through untouched.
func MapSuccess[U, S, I any](o Outcome[S, I], f func(S) U) Outcome[U, I] {
	if v, ok := o.Value(); ok {
		return Success[U, I](f(v))
	}
	return Recast[U](o)
}

// MapFailure applies f to the failure error. Successes and declines pass
// through untouched.
func MapFailure[S, I any](o Outcome[S, I], f func(error) error) Outcome[S, I] {
	if o.kind != KindFailure {
		return o
	}
	return Failure[S, I](f(o.err))
}
