package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
)

// Handler bridges a service to net/http. Each request is converted with
// request.FromHTTP and the outcome is written back: a reply as is, a
// decline as 404 (or whatever opts.NotFound answers), a failure through
// opts.ErrorResponse.
func Handler(svc router.Handler, opts ServerOpts) http.Handler {
	opts.applyDefaults()
	return &bridge{svc: svc, opts: opts}
}

type bridge struct {
	svc  router.Handler
	opts ServerOpts
}

func (b *bridge) ServeHTTP(w http.ResponseWriter, hr *http.Request) {
	req := request.FromHTTP(hr, b.opts.MaxBodyBytes)
	resp := b.respond(hr.Context(), req)

	resp.GetHeaders().Remove("date")
	resp.WithHeader("date", time.Now().UTC().Format(http.TimeFormat))

	if respEtag, reqEtag := resp.GetHeaders().Get("etag"), req.Headers.Get("if-none-match"); respEtag != "" && respEtag == reqEtag {
		// the client's copy is current
		if c, ok := resp.GetBody().(io.Closer); ok {
			c.Close()
		}
		resp = response.NewBaseResponse().
			WithStatusCode(response.StatusNotModified).
			WithHeader("etag", respEtag).
			WithHeader("date", resp.GetHeaders().Get("date"))
	}

	if err := response.Send(w, resp); err != nil {
		b.opts.Logger.Warn("unable to write response",
			"method", hr.Method,
			"target", hr.URL.RequestURI(),
			"error", err.Error(),
		)
	}
}

// respond runs the service and turns its outcome into a response.
func (b *bridge) respond(ctx context.Context, req *request.Request) (resp response.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = b.opts.Recovery(r)
		}
	}()

	out := b.svc.Call(ctx, req)
	if next, ok := out.Input(); ok && b.opts.NotFound != nil {
		out = b.opts.NotFound.Call(ctx, next)
	}

	switch {
	case out.IsSuccess():
		resp, _ = out.Value()
		if resp == nil {
			return b.fail(req, fmt.Errorf("nil response for %s %s", req.Method, req.Target))
		}
		return resp
	case out.IsFailure():
		return b.fail(req, out.Err())
	default:
		return response.NewStatusResponse(response.StatusNotFound)
	}
}

func (b *bridge) fail(req *request.Request, err error) response.Response {
	resp := b.opts.ErrorResponse(err)
	if resp.GetStatusCode() >= response.StatusInternalServerError {
		b.opts.Logger.Error("request failed",
			"method", req.Method,
			"target", req.Target,
			"status", int(resp.GetStatusCode()),
			"error", err.Error(),
		)
	}
	return resp
}
