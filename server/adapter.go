package server

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
	"github.com/shravanasati/relay/service"
)

// FromHTTPHandler runs an http.Handler as a route handler. The handler sees
// the request's current target, so under a mount it gets the stripped path
// like it would behind http.StripPrefix. Its output is buffered into a
// response.
func FromHTTPHandler(h http.Handler) router.Handler {
	return service.ServiceFunc[*request.Request, response.Response](func(ctx context.Context, r *request.Request) service.Outcome[response.Response, *request.Request] {
		body, err := r.Body()
		if err != nil {
			return service.Failure[response.Response, *request.Request](err)
		}

		hr, err := http.NewRequestWithContext(ctx, r.Method, r.Target, bytes.NewReader(body))
		if err != nil {
			return service.Failure[response.Response, *request.Request](
				router.NewError(response.StatusBadRequest, err))
		}
		hr.RequestURI = r.Target
		hr.RemoteAddr = r.RemoteAddr
		hr.Host = r.Headers.Get("host")
		for k, v := range r.Headers.All() {
			hr.Header.Add(k, v)
		}

		rec := &recorder{header: make(http.Header)}
		h.ServeHTTP(rec, hr)
		return service.Success[response.Response, *request.Request](rec.response())
	})
}

// recorder is an in-memory http.ResponseWriter.
type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (rec *recorder) Header() http.Header { return rec.header }

func (rec *recorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
}

func (rec *recorder) Write(p []byte) (int, error) {
	rec.WriteHeader(http.StatusOK)
	return rec.body.Write(p)
}

func (rec *recorder) response() response.Response {
	rec.WriteHeader(http.StatusOK)
	resp := response.NewBaseResponse().
		WithStatusCode(response.StatusCode(rec.status)).
		WithBody(bytes.NewReader(rec.body.Bytes()))
	for k, vs := range rec.header {
		for _, v := range vs {
			resp.WithHeader(k, v)
		}
	}
	if !resp.GetHeaders().Has("content-length") {
		resp.WithHeader("content-length", strconv.Itoa(rec.body.Len()))
	}
	return resp
}
