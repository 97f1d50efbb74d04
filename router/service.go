package router

import (
	"context"
	"io"
	"strings"

	"github.com/shravanasati/relay/combinator"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/service"
)

// Service returns the dispatching service for the routes registered so far,
// wrapped in the Use middleware, first added outermost.
func (r *Router) Service() Handler {
	d := &dispatcher{table: newTable(r.routes), opts: r.opts}
	h := combinator.ErrInto[*Error](Handler(d), Internal)
	return service.Apply(h, r.middlewares...)
}

type dispatcher struct {
	table *table
	opts  Options
}

func (d *dispatcher) Call(ctx context.Context, req *request.Request) service.Outcome[response.Response, *request.Request] {
	matches := d.table.find(req.Path())
	if len(matches) == 0 {
		return service.Next[response.Response](req)
	}

	ext := req.Extensions()
	outer, hadOuter := request.Get[request.Params](ext)
	restore := func() {
		if hadOuter {
			request.Set(ext, outer)
		} else {
			request.Remove[request.Params](ext)
		}
	}

	tried := false
	for _, m := range matches {
		if !m.acceptsMethod(req.Method) {
			continue
		}
		if err := ctx.Err(); err != nil {
			restore()
			return service.Failure[response.Response, *request.Request](err)
		}
		tried = true

		request.Set(ext, m.Params)
		out := m.Handler.Call(ctx, req)
		next, declined := out.Input()
		if !declined {
			if resp, ok := out.Value(); ok && req.Method == "HEAD" && m.Method == "GET" {
				return service.Success[response.Response, *request.Request](d.headOnly(resp))
			}
			return out
		}
		req = next
		ext = req.Extensions()
	}

	restore()
	if !tried && d.opts.MethodNotAllowed {
		return service.Success[response.Response, *request.Request](
			response.NewStatusResponse(response.StatusMethodNotAllowed).
				WithHeader("allow", strings.Join(allowed(matches), ", ")),
		)
	}
	return service.Next[response.Response](req)
}

// headOnly strips the body from a response produced for a HEAD request.
// Headers, content length included, are kept.
func (d *dispatcher) headOnly(resp response.Response) response.Response {
	if c, ok := resp.GetBody().(io.Closer); ok {
		c.Close()
	}
	resp = resp.WithBody(nil)
	if d.opts.HeadStatus != 0 {
		resp = resp.WithStatusCode(d.opts.HeadStatus)
	}
	return resp
}
