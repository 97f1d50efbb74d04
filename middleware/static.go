package middleware

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
	"github.com/shravanasati/relay/service"
)

// NamedReadSeekerFS is a custom FS interface which returns [response.NamedReadSeeker].
// It abstracts filesystem operations for serving static files from different sources.
type NamedReadSeekerFS interface {
	// Open opens a file by name and returns a NamedReadSeeker that can read and seek within the file.
	Open(name string) (response.NamedReadSeeker, error)
}

// DirFS serves files from a root directory on the filesystem.
type DirFS struct {
	root string
}

// NewDirFS creates a new DirFS instance that serves files from the given root directory.
func NewDirFS(root string) *DirFS {
	return &DirFS{root: root}
}

func (d *DirFS) Open(name string) (response.NamedReadSeeker, error) {
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// EmbedFS serves files from an embedded filesystem.
type EmbedFS struct {
	fsys embed.FS
}

func NewEmbedFS(fsys embed.FS) *EmbedFS {
	return &EmbedFS{fsys: fsys}
}

func (e *EmbedFS) Open(name string) (response.NamedReadSeeker, error) {
	if name == "" {
		name = "."
	}
	f, err := e.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return &embedFile{name: name, data: bytes.NewReader(nil), info: info}, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &embedFile{
		name: name,
		data: bytes.NewReader(data),
		info: info,
	}, nil
}

// embedFile implements response.NamedReadSeeker for files within [embed.FS].
type embedFile struct {
	name string
	data io.ReadSeeker
	info fs.FileInfo
}

func (f *embedFile) Read(p []byte) (int, error)         { return f.data.Read(p) }
func (f *embedFile) Seek(o int64, w int) (int64, error) { return f.data.Seek(o, w) }
func (f *embedFile) Close() error                       { return nil }
func (f *embedFile) Stat() (fs.FileInfo, error)         { return f.info, nil }
func (f *embedFile) Name() string                       { return f.name }

// NewStaticHandler serves files from fsys. The file name is the route
// capture wildcardParam; when the request carries no such capture, as under
// a service mount, the request path is used instead. Directories serve their
// index.html.
//
// Paths that escape the root and files that do not exist are declined, so
// a static handler can sit in front of other routes.
func NewStaticHandler(wildcardParam string, fsys NamedReadSeekerFS) router.Handler {
	decline := service.Next[response.Response, *request.Request]
	fail := func(err error) outcome {
		return service.Failure[response.Response, *request.Request](router.Internal(err))
	}

	return handler(func(_ context.Context, r *request.Request) outcome {
		reqFilePath, ok := r.Params()[wildcardParam]
		if !ok {
			reqFilePath = r.Path()
		}

		// reject anything that climbs out of the root
		if strings.Contains(reqFilePath, "..") || strings.Contains(reqFilePath, "\\") {
			return decline(r)
		}
		cleanedPath := strings.TrimPrefix(path.Clean("/"+reqFilePath), "/")

		f, err := fsys.Open(cleanedPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return decline(r)
			}
			return fail(err)
		}

		stat, err := f.Stat()
		if err != nil {
			f.Close()
			return fail(err)
		}
		if !stat.IsDir() {
			return reply(response.NewFileResponse(f))
		}

		f.Close()
		indexFile, err := fsys.Open(path.Join(cleanedPath, "index.html"))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return decline(r)
			}
			return fail(err)
		}
		return reply(response.NewFileResponse(indexFile))
	})
}
