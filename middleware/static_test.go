package middleware

import (
	"bytes"
	"context"
	"embed"
	"io"
	"io/fs"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shravanasati/relay/mount"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
)

//go:embed static.go
var embedded embed.FS

// mockFS is an in-memory NamedReadSeekerFS. Names ending in "/" are
// directories.
type mockFS struct {
	files      map[string][]byte
	lastOpened *mockFile
}

func (m *mockFS) Open(name string) (response.NamedReadSeeker, error) {
	if _, ok := m.files[name+"/"]; ok {
		return &mockFile{name: name, reader: bytes.NewReader(nil), dir: true}, nil
	}
	data, exists := m.files[name]
	if !exists {
		return nil, fs.ErrNotExist
	}
	mf := &mockFile{name: name, reader: bytes.NewReader(data), data: data}
	m.lastOpened = mf
	return mf, nil
}

type mockFile struct {
	name   string
	reader *bytes.Reader
	data   []byte
	dir    bool
	closed bool
}

func (m *mockFile) Read(p []byte) (int, error)         { return m.reader.Read(p) }
func (m *mockFile) Seek(o int64, w int) (int64, error) { return m.reader.Seek(o, w) }
func (m *mockFile) Close() error                       { m.closed = true; return nil }
func (m *mockFile) Stat() (fs.FileInfo, error) {
	return &mockFileInfo{name: m.name, size: int64(len(m.data)), dir: m.dir}, nil
}
func (m *mockFile) Name() string { return m.name }

type mockFileInfo struct {
	name string
	size int64
	dir  bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return 0644 }
func (m *mockFileInfo) ModTime() time.Time { return time.Unix(0, 0) }
func (m *mockFileInfo) IsDir() bool        { return m.dir }
func (m *mockFileInfo) Sys() any           { return nil }

type errorFS struct{}

func (errorFS) Open(string) (response.NamedReadSeeker, error) { return nil, fs.ErrPermission }

func staticReq(param, value string) *request.Request {
	r := newReq("GET", "/")
	request.Set(r.Extensions(), request.Params{param: value})
	return r
}

func body(t *testing.T, resp response.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.GetBody())
	require.NoError(t, err)
	return string(b)
}

func TestStaticHandler(t *testing.T) {
	mfs := &mockFS{files: map[string][]byte{
		"style.css":            []byte("body { color: red; }"),
		"file with spaces.txt": []byte("spaces"),
		"docs/":                nil,
		"docs/index.html":      []byte("<h1>docs</h1>"),
		"empty/":               nil,
	}}
	h := NewStaticHandler("file", mfs)

	tests := []struct {
		name     string
		path     string
		wantBody string
		declined bool
	}{
		{"file", "style.css", "body { color: red; }", false},
		{"leading slash is relative", "/style.css", "body { color: red; }", false},
		{"special characters", "file with spaces.txt", "spaces", false},
		{"directory index", "docs", "<h1>docs</h1>", false},
		{"directory without index", "empty", "", true},
		{"missing", "missing.js", "", true},
		{"empty path", "", "", true},
		{"traversal", "../../../etc/passwd", "", true},
		{"traversal in middle", "files/../../../etc/passwd", "", true},
		{"backslashes", "..\\..\\windows\\system32", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := staticReq("file", tt.path)
			out := h.Call(context.Background(), req)
			if tt.declined {
				in, ok := out.Input()
				require.True(t, ok, "expected decline, got %v", out)
				assert.Same(t, req, in)
				return
			}
			resp, ok := out.Value()
			require.True(t, ok, "expected reply, got %v", out)
			assert.Equal(t, tt.wantBody, body(t, resp))
		})
	}
}

func TestStaticHandlerClosesFileAfterWrite(t *testing.T) {
	mfs := &mockFS{files: map[string][]byte{"style.css": []byte("body {}")}}
	resp := call(t, NewStaticHandler("file", mfs), staticReq("file", "style.css"))

	require.NoError(t, response.Send(httptest.NewRecorder(), resp))
	require.NotNil(t, mfs.lastOpened)
	assert.True(t, mfs.lastOpened.closed)
}

func TestStaticHandlerFilesystemError(t *testing.T) {
	out := NewStaticHandler("file", errorFS{}).Call(context.Background(), staticReq("file", "any.txt"))
	require.True(t, out.IsFailure())

	var rerr *router.Error
	require.ErrorAs(t, out.Err(), &rerr)
	assert.Equal(t, response.StatusInternalServerError, rerr.Status)
	assert.ErrorIs(t, out.Err(), fs.ErrPermission)
}

func TestStaticHandlerUnderMount(t *testing.T) {
	mfs := &mockFS{files: map[string][]byte{"app.js": []byte("js")}}
	h := mount.Mount("/assets", NewStaticHandler("file", mfs))

	resp := call(t, h, newReq("GET", "/assets/app.js"))
	assert.Equal(t, "js", body(t, resp))

	req := newReq("GET", "/assets/nope.js")
	out := h.Call(context.Background(), req)
	in, ok := out.Input()
	require.True(t, ok)
	assert.Equal(t, "/assets/nope.js", in.Target)
}

func TestStaticHandlerInRouter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>home</html>"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("a{}"), 0o644))

	r := router.NewRouter(nil)
	r.Get("/static/*file", NewStaticHandler("file", NewDirFS(dir)))
	r.Get("/static/*rest", router.HandlerFunc(func(_ *request.Request) response.Response {
		return response.NewTextResponse("fallback").WithStatusCode(response.StatusNotFound)
	}))
	svc := r.Service()

	tests := []struct {
		target string
		want   string
	}{
		{"/static/", "<html>home</html>"},
		{"/static/css/site.css", "a{}"},
		{"/static/missing.css", "fallback"},
		{"/static/../secret", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, body(t, call(t, svc, newReq("GET", tt.target))))
		})
	}
}

func TestDirFSOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte("test content"), 0o644))

	dfs := NewDirFS(dir)
	f, err := dfs.Open("test.txt")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "test content", string(data))

	_, err = dfs.Open("missing.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestEmbedFSOpen(t *testing.T) {
	efs := NewEmbedFS(embedded)

	f, err := efs.Open("static.go")
	require.NoError(t, err)
	assert.Equal(t, "static.go", f.Name())

	info, err := f.Stat()
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), "package middleware")

	root, err := efs.Open("")
	require.NoError(t, err)
	info, err = root.Stat()
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = efs.Open("missing.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestNamedReadSeekerFS(t *testing.T) {
	var _ NamedReadSeekerFS = (*DirFS)(nil)
	var _ NamedReadSeekerFS = (*EmbedFS)(nil)
}
