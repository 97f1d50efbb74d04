package service

import "context"

// Middleware transforms one service into another, typically to add
// behavior around every call.
type Middleware[I, S any] func(Service[I, S]) Service[I, S]

// Compose chains middlewares so that the first one listed is the outermost:
// Compose(a, b)(svc) == a(b(svc)). Composition is associative.
func Compose[I, S any](ms ...Middleware[I, S]) Middleware[I, S] {
	return func(svc Service[I, S]) Service[I, S] {
		for i := len(ms) - 1; i >= 0; i-- {
			if ms[i] == nil {
				continue
			}
			svc = ms[i](svc)
		}
		return svc
	}
}

// Apply wraps svc with ms, first listed outermost.
func Apply[I, S any](svc Service[I, S], ms ...Middleware[I, S]) Service[I, S] {
	return Compose(ms...)(svc)
}

// Passthrough returns a middleware that leaves the service unchanged.
func Passthrough[I, S any]() Middleware[I, S] {
	return func(svc Service[I, S]) Service[I, S] { return svc }
}

// WrapFunc builds a middleware from a function that receives the wrapped
// service and decides whether and how to call it.
func WrapFunc[I, S any](f func(ctx context.Context, next Service[I, S], in I) Outcome[S, I]) Middleware[I, S] {
	return func(next Service[I, S]) Service[I, S] {
		return ServiceFunc[I, S](func(ctx context.Context, in I) Outcome[S, I] {
			return f(ctx, next, in)
		})
	}
}
