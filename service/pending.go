package service

import (
	"context"
	"sync/atomic"
)

// Pending is a prepared, not yet started call. It can be awaited exactly
// once; awaiting it again is a programming error and panics.
type Pending[S, I any] struct {
	svc  Service[I, S]
	in   I
	done atomic.Bool
}

// Prepare binds svc to in without calling it.
func Prepare[I, S any](svc Service[I, S], in I) *Pending[S, I] {
	return &Pending[S, I]{svc: svc, in: in}
}

// Await runs the prepared call on the calling goroutine. Cancelling ctx
// before Await starts the call yields a failure and never invokes the
// service.
func (p *Pending[S, I]) Await(ctx context.Context) Outcome[S, I] {
	if !p.done.CompareAndSwap(false, true) {
		panic("service: await after done")
	}
	in := p.in
	var zero I
	p.in = zero
	if err := ctx.Err(); err != nil {
		return Failure[S, I](err)
	}
	return p.svc.Call(ctx, in)
}

// Done reports whether Await has been called.
func (p *Pending[S, I]) Done() bool { return p.done.Load() }
