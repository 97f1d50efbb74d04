package response

import (
	"io"

	"github.com/shravanasati/relay/headers"
)

// BaseResponse struct for fluent method chaining.
type BaseResponse struct {
	StatusCode StatusCode
	Headers    *headers.Headers
	Body       io.Reader
}

// NewBaseResponse creates an empty 200 response.
func NewBaseResponse() Response {
	return &BaseResponse{
		Headers:    headers.NewHeaders(),
		StatusCode: StatusOK,
	}
}

func (r *BaseResponse) GetStatusCode() StatusCode {
	return r.StatusCode
}

func (r *BaseResponse) GetHeaders() *headers.Headers {
	return r.Headers
}

func (r *BaseResponse) GetBody() io.Reader {
	return r.Body
}

func (r *BaseResponse) WithStatusCode(code StatusCode) Response {
	r.StatusCode = code
	return r
}

func (r *BaseResponse) WithHeader(key, value string) Response {
	r.Headers.Add(key, value)
	return r
}

func (r *BaseResponse) WithHeaders(headers map[string]string) Response {
	for key, value := range headers {
		r.Headers.Add(key, value)
	}
	return r
}

func (r *BaseResponse) WithBody(body io.Reader) Response {
	r.Body = body
	return r
}
