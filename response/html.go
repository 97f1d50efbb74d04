package response

import (
	"strconv"
	"strings"
)

// HTMLResponse is a response that sends an HTML document as is.
type HTMLResponse struct {
	Response
}

// NewHTMLResponse creates a new HTML response.
func NewHTMLResponse(body string) Response {
	br := NewBaseResponse().
		WithHeader("content-type", "text/html; charset=utf-8").
		WithHeader("content-length", strconv.Itoa(len(body))).
		WithBody(strings.NewReader(body))

	return &HTMLResponse{
		Response: br,
	}
}
