package response

import "io"

// StreamFunc produces a response body incrementally. Returning an error
// aborts the body; the reader sees that error.
type StreamFunc func(w io.Writer) error

// StreamResponse is a response whose body is produced while it is being
// written. No content length is set; the transport frames the body.
type StreamResponse struct {
	Response
	Stream StreamFunc
}

// NewStreamResponse creates a streaming response. The stream function runs
// on its own goroutine once the body is first read, and stops at the first
// failed write if the reader goes away.
func NewStreamResponse(sf StreamFunc) *StreamResponse {
	sr := &StreamResponse{
		Response: NewBaseResponse(),
		Stream:   sf,
	}
	sr.WithBody(&lazyPipe{stream: sf})
	return sr
}

type lazyPipe struct {
	stream StreamFunc
	pr     *io.PipeReader
}

func (lp *lazyPipe) Read(p []byte) (int, error) {
	if lp.pr == nil {
		pr, pw := io.Pipe()
		lp.pr = pr
		go func() {
			pw.CloseWithError(lp.stream(pw))
		}()
	}
	return lp.pr.Read(p)
}

// Close stops the producer if it is still writing.
func (lp *lazyPipe) Close() error {
	if lp.pr == nil {
		return nil
	}
	return lp.pr.Close()
}
