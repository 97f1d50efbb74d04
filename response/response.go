// Package response is the result type of the HTTP side of a service graph.
// Responses are built fluently and written to a net/http ResponseWriter
// with Send.
package response

import (
	"io"

	"github.com/shravanasati/relay/headers"
)

// Response is a fluent HTTP response. The With methods modify the
// response in place and return it for chaining.
type Response interface {
	GetStatusCode() StatusCode
	GetHeaders() *headers.Headers
	GetBody() io.Reader

	WithStatusCode(code StatusCode) Response
	WithHeader(key, value string) Response
	WithHeaders(headers map[string]string) Response
	WithBody(body io.Reader) Response
}

// NewStatusResponse creates a plain text response whose body is the reason
// phrase of code.
func NewStatusResponse(code StatusCode) Response {
	return NewTextResponse(GetStatusReason(code)).WithStatusCode(code)
}

// NewEmptyResponse creates a response with no body and a zero content length.
func NewEmptyResponse(code StatusCode) Response {
	return NewBaseResponse().
		WithStatusCode(code).
		WithHeader("content-length", "0")
}
