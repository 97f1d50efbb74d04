package response

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
)

func detectContentType(filename string, r io.ReadSeeker) string {
	if ctype := mime.TypeByExtension(filepath.Ext(filename)); ctype != "" {
		return ctype
	}

	// sniff the first 512 bytes, then rewind
	buf := make([]byte, 512)
	n, _ := io.ReadFull(r, buf)
	r.Seek(0, io.SeekStart)
	return http.DetectContentType(buf[:n])
}
