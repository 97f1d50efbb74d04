package request

import "io"

type bodyReader struct {
	reader        io.ReadCloser
	bytesConsumed int64
	limit         int64
}

// Read implements the io.Reader interface.
func (br *bodyReader) Read(p []byte) (int, error) {
	if br.limit > 0 && br.bytesConsumed > br.limit {
		return 0, ErrBodyTooLarge
	}
	if br.limit > 0 && int64(len(p)) > br.limit-br.bytesConsumed+1 {
		// read one byte past the limit to tell "exactly at" from "over"
		p = p[:br.limit-br.bytesConsumed+1]
	}
	n, err := br.reader.Read(p)
	br.bytesConsumed += int64(n)

	if br.limit > 0 && br.bytesConsumed > br.limit {
		return n - int(br.bytesConsumed-br.limit), ErrBodyTooLarge
	}
	return n, err
}

// Close discards the unread portion of the body and closes it.
func (br *bodyReader) Close() error {
	_, _ = io.Copy(io.Discard, io.LimitReader(br.reader, 1<<16))
	return br.reader.Close()
}

func newBodyReader(r io.ReadCloser, limit int64) *bodyReader {
	return &bodyReader{reader: r, limit: limit}
}
