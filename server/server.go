// Package server serves a service graph over HTTP. Connection handling is
// left to net/http; this package converts requests and outcomes at the
// boundary and manages the listener's lifecycle.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/shravanasati/relay/router"
)

type Server struct {
	opts     ServerOpts
	listener net.Listener
	http     *http.Server
	closed   atomic.Bool
	done     chan error
}

// Addr is the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close shuts the server down gracefully: the listener stops accepting,
// and in-flight requests get up to ShutdownTimeout to finish.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		s.http.Close()
		return err
	}
	return <-s.done
}

// Done receives the error that stopped the server, or nil after Close.
func (s *Server) Done() <-chan error {
	return s.done
}

func (s *Server) serve() {
	err := s.http.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if err != nil && !s.closed.Load() {
		s.opts.Logger.Error("server stopped", "address", s.opts.Address, "error", err.Error())
	}
	s.done <- err
	close(s.done)
}

func newServer(opts ServerOpts, svc router.Handler) *Server {
	opts.applyDefaults()
	return &Server{
		opts: opts,
		http: &http.Server{
			Handler:      Handler(svc, opts),
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
		done: make(chan error, 1),
	}
}

// Serve starts serving svc with the given options and returns once the
// listener is bound.
func Serve(opts ServerOpts, svc router.Handler) (*Server, error) {
	s := newServer(opts, svc)

	listener, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return nil, err
	}
	s.listener = listener
	s.opts.Logger.Info("listening", "address", listener.Addr().String())

	go s.serve()
	return s, nil
}

// Run serves svc until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, opts ServerOpts, svc router.Handler) error {
	s, err := Serve(opts, svc)
	if err != nil {
		return err
	}
	select {
	case err := <-s.Done():
		return err
	case <-ctx.Done():
		return s.Close()
	}
}
