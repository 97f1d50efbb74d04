package response

import (
	"io"
	"io/fs"
	"strconv"
)

// NamedReadSeeker interface implements Read, Seek, Close, Stat and Name methods.
// It is compatible with [os.File].
// Stat is used for content length detection, while Name, Read and Seek methods are used
// for content type detection.
type NamedReadSeeker interface {
	io.ReadSeeker
	io.Closer
	Stat() (fs.FileInfo, error)
	Name() string
}

// NewFileResponse creates a new file response. Content length, type and an
// ETag derived from the modification time are set when the file can be
// stat'ed; otherwise the length is left for the transport to work out.
// The file is closed after it has been written.
func NewFileResponse(f NamedReadSeeker) Response {
	br := NewBaseResponse().WithBody(f)
	st, err := f.Stat()
	if err != nil {
		return br
	}
	return br.
		WithHeader("content-length", strconv.FormatInt(st.Size(), 10)).
		WithHeader("content-type", detectContentType(f.Name(), f)).
		WithHeader("etag", prepareEtagValue(st.Name()+st.ModTime().String()))
}
