// Package request holds the input that flows through a service graph: the
// request line, headers, a lazily read body, and a type-keyed side channel
// for data attached by routers, mounts and middleware.
package request

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shravanasati/relay/headers"
)

type RequestLine struct {
	Method      string
	Target      string
	HTTPVersion string
}

// Request is owned by exactly one call chain at a time. Stages borrow it,
// and a stage that changes it before declining puts it back as it was.
type Request struct {
	RequestLine
	Headers    headers.Headers
	RemoteAddr string

	body       io.Reader
	bodyBytes  []byte
	bodyErr    error
	bodyDone   bool
	extensions Extensions
}

// New creates a request with an empty body.
func New(method, target string) *Request {
	return &Request{
		RequestLine: RequestLine{Method: method, Target: target, HTTPVersion: "1.1"},
		Headers:     *headers.NewHeaders(),
	}
}

// WithBody sets the body reader. It is read at most once, on the first
// call to Body.
func (r *Request) WithBody(body io.Reader) *Request {
	r.body = body
	r.bodyBytes, r.bodyErr, r.bodyDone = nil, nil, false
	return r
}

// WithHeader adds a header and returns the request.
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers.Add(key, value)
	return r
}

// Body reads the whole body and caches it, so every stage that looks at the
// body sees the same bytes no matter how many stages declined before it.
func (r *Request) Body() ([]byte, error) {
	if r.bodyDone {
		return r.bodyBytes, r.bodyErr
	}
	r.bodyDone = true
	if r.body == nil {
		return nil, nil
	}
	r.bodyBytes, r.bodyErr = io.ReadAll(r.body)
	if c, ok := r.body.(io.Closer); ok {
		c.Close()
	}
	return r.bodyBytes, r.bodyErr
}

// Path is the target without its query string.
func (r *Request) Path() string {
	path, _, _ := strings.Cut(r.Target, "?")
	return path
}

// RawQuery is the part of the target after '?', if any.
func (r *Request) RawQuery() string {
	_, query, _ := strings.Cut(r.Target, "?")
	return query
}

// SetPath replaces the path part of the target and keeps the query string.
func (r *Request) SetPath(path string) {
	if _, query, ok := strings.Cut(r.Target, "?"); ok {
		r.Target = path + "?" + query
		return
	}
	r.Target = path
}

// Clone returns a copy with its own headers and extensions. The unread
// body and the cached body bytes are shared.
func (r *Request) Clone() *Request {
	c := *r
	c.Headers = *r.Headers.Clone()
	c.extensions = r.extensions.Clone()
	return &c
}

// Extensions returns the side channel attached to this request.
func (r *Request) Extensions() *Extensions {
	return &r.extensions
}

// Params returns the path captures the router attached, or nil.
func (r *Request) Params() Params {
	p, _ := Get[Params](&r.extensions)
	return p
}

// Param returns a single path capture, or "".
func (r *Request) Param(name string) string {
	return r.Params()[name]
}

// FromHTTP converts a net/http request. The body is not read until a stage
// asks for it. Reads beyond maxBody bytes fail with ErrBodyTooLarge; a
// maxBody of zero or less means no limit.
func FromHTTP(hr *http.Request, maxBody int64) *Request {
	h := headers.FromHTTP(hr.Header)
	if hr.Host != "" && !h.Has("host") {
		h.Set("host", hr.Host)
	}

	r := &Request{
		RequestLine: RequestLine{
			Method:      hr.Method,
			Target:      hr.URL.RequestURI(),
			HTTPVersion: fmt.Sprintf("%d.%d", hr.ProtoMajor, hr.ProtoMinor),
		},
		Headers:    *h,
		RemoteAddr: hr.RemoteAddr,
	}
	if hr.Body != nil && hr.Body != http.NoBody {
		r.body = newBodyReader(hr.Body, maxBody)
	}
	return r
}
