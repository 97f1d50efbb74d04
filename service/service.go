// Package service defines the unit of request processing: a Service turns an
// input into an Outcome, which is a success value, a failure, or the input
// handed back because the service did not apply to it.
//
// Services are built once and then shared by every concurrent call. A
// service that needs mutable state must synchronize it internally; nothing in
// this package locks on its behalf.
package service

import "context"

// Service processes an input of type I and produces an Outcome whose success
// value has type S.
//
// Call must not return the zero Outcome. Declining services return
// Next(in) with the input they were given, restoring any change they made
// to it first.
type Service[I, S any] interface {
	Call(ctx context.Context, in I) Outcome[S, I]
}

// ServiceFunc adapts an ordinary function to the Service interface.
type ServiceFunc[I, S any] func(ctx context.Context, in I) Outcome[S, I]

// Call calls f(ctx, in).
func (f ServiceFunc[I, S]) Call(ctx context.Context, in I) Outcome[S, I] {
	return f(ctx, in)
}

// Func is shorthand for converting f to a ServiceFunc.
func Func[I, S any](f func(ctx context.Context, in I) Outcome[S, I]) Service[I, S] {
	return ServiceFunc[I, S](f)
}
