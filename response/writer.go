package response

import (
	"fmt"
	"io"
	"net/http"

	"github.com/shravanasati/relay/headers"
)

// responseState is the part of the response a ResponseWriter expects next.
type responseState string

const (
	stateStatusLine responseState = "status line"
	stateHeaders    responseState = "headers"
	stateBody       responseState = "body"
	stateDone       responseState = "done"
)

func newResponseState() responseState {
	return stateStatusLine
}

func (rs responseState) advance() responseState {
	switch rs {
	case stateStatusLine:
		return stateHeaders
	case stateHeaders:
		return stateBody
	case stateBody:
		return stateDone
	}
	panic("response: advance past " + string(rs))
}

// ResponseWriter hands a response to a net/http ResponseWriter in three
// ordered parts: status line, headers, body. Writing a part out of order
// fails with ErrInvalidWriterState.
type ResponseWriter struct {
	hw     http.ResponseWriter
	status StatusCode
	state  responseState
}

// NewHTTPResponseWriter writes through a net/http ResponseWriter.
func NewHTTPResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{hw: w, state: newResponseState()}
}

func (rw *ResponseWriter) check(want responseState) error {
	if rw.hw == nil {
		return ErrNilWriter
	}
	if rw.state != want {
		return fmt.Errorf("%w: cannot write %s, writer is at %s", ErrInvalidWriterState, want, rw.state)
	}
	return nil
}

func (rw *ResponseWriter) WriteStatusLine(statusCode StatusCode) error {
	if err := rw.check(stateStatusLine); err != nil {
		return err
	}
	rw.status = statusCode
	rw.state = rw.state.advance()
	return nil
}

func (rw *ResponseWriter) WriteHeaders(h *headers.Headers) error {
	if err := rw.check(stateHeaders); err != nil {
		return err
	}
	h.CopyTo(rw.hw.Header())
	rw.hw.WriteHeader(int(rw.status))
	rw.state = rw.state.advance()
	return nil
}

func (rw *ResponseWriter) WriteBody(b io.Reader) error {
	if err := rw.check(stateBody); err != nil {
		return err
	}
	if b != nil {
		if _, err := io.Copy(rw.hw, b); err != nil {
			return err
		}
	}
	rw.state = rw.state.advance()
	return nil
}

// Done reports whether the whole response has been written.
func (rw *ResponseWriter) Done() bool {
	return rw.state == stateDone
}

func writeResponse(rw *ResponseWriter, r Response) error {
	if err := rw.WriteStatusLine(r.GetStatusCode()); err != nil {
		return err
	}
	if err := rw.WriteHeaders(r.GetHeaders()); err != nil {
		return err
	}
	err := rw.WriteBody(r.GetBody())
	if c, ok := r.GetBody().(io.Closer); ok {
		c.Close()
	}
	return err
}

// Send writes r through a net/http ResponseWriter. A body that is also an
// io.Closer is closed once written.
func Send(w http.ResponseWriter, r Response) error {
	return writeResponse(NewHTTPResponseWriter(w), r)
}
