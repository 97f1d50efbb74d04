package response

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shravanasati/relay/headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodyString(t *testing.T, r Response) string {
	t.Helper()
	if r.GetBody() == nil {
		return ""
	}
	b, err := io.ReadAll(r.GetBody())
	require.NoError(t, err)
	return string(b)
}

func TestBaseResponse(t *testing.T) {
	resp := NewBaseResponse()
	assert.Equal(t, StatusOK, resp.GetStatusCode())
	assert.Equal(t, 0, resp.GetHeaders().Size())
	assert.Nil(t, resp.GetBody())

	modified := resp.
		WithStatusCode(StatusCreated).
		WithHeader("X-One", "1").
		WithHeaders(map[string]string{"X-Two": "2"}).
		WithBody(strings.NewReader("made"))

	// fluent methods modify in place
	assert.Same(t, resp, modified)
	assert.Equal(t, StatusCreated, resp.GetStatusCode())
	assert.Equal(t, "1", resp.GetHeaders().Get("x-one"))
	assert.Equal(t, "2", resp.GetHeaders().Get("x-two"))
	assert.Equal(t, "made", bodyString(t, resp))
}

func TestSendWritesEveryPart(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, Send(rec, NewTextResponse("hi").WithHeader("X-Test", "yes")))

	res := rec.Result()
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "2", res.Header.Get("Content-Length"))
	assert.Equal(t, "text/plain; charset=utf-8", res.Header.Get("Content-Type"))
	assert.Equal(t, "yes", res.Header.Get("X-Test"))
	assert.Equal(t, "hi", rec.Body.String())
}

func TestResponseWriterStateMachine(t *testing.T) {
	t.Run("out of order", func(t *testing.T) {
		rw := NewHTTPResponseWriter(httptest.NewRecorder())

		assert.ErrorIs(t, rw.WriteHeaders(headers.NewHeaders()), ErrInvalidWriterState)
		assert.ErrorIs(t, rw.WriteBody(strings.NewReader("x")), ErrInvalidWriterState)

		require.NoError(t, rw.WriteStatusLine(StatusOK))
		assert.ErrorIs(t, rw.WriteStatusLine(StatusOK), ErrInvalidWriterState)
		require.NoError(t, rw.WriteHeaders(headers.NewHeaders()))
		require.NoError(t, rw.WriteBody(nil))
		assert.True(t, rw.Done())
		assert.ErrorIs(t, rw.WriteBody(nil), ErrInvalidWriterState)
	})

	t.Run("nil writer", func(t *testing.T) {
		rw := NewHTTPResponseWriter(nil)
		assert.ErrorIs(t, rw.WriteStatusLine(StatusOK), ErrNilWriter)
	})

	t.Run("advance past done panics", func(t *testing.T) {
		assert.Panics(t, func() { stateDone.advance() })
	})
}

func TestSend(t *testing.T) {
	rec := httptest.NewRecorder()
	resp := NewTextResponse("teapot").WithStatusCode(StatusImATeapot).WithHeader("X-Kind", "pot")

	require.NoError(t, Send(rec, resp))
	assert.Equal(t, 418, rec.Code)
	assert.Equal(t, "teapot", rec.Body.String())
	assert.Equal(t, "pot", rec.Header().Get("X-Kind"))
	assert.Equal(t, "6", rec.Header().Get("Content-Length"))
}

func TestReplies(t *testing.T) {
	testCases := []struct {
		name        string
		resp        Response
		status      StatusCode
		contentType string
		body        string
	}{
		{"text", NewTextResponse("plain"), StatusOK, "text/plain; charset=utf-8", "plain"},
		{"html", NewHTMLResponse("<p>x</p>"), StatusOK, "text/html; charset=utf-8", "<p>x</p>"},
		{"json", MustJSON(map[string]int{"n": 1}), StatusOK, "application/json", `{"n":1}`},
		{"status", NewStatusResponse(StatusNotFound), StatusNotFound, "text/plain; charset=utf-8", "Not Found"},
		{"empty", NewEmptyResponse(StatusNoContent), StatusNoContent, "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.resp.GetStatusCode())
			assert.Equal(t, tc.contentType, tc.resp.GetHeaders().Get("content-type"))
			assert.Equal(t, fmt.Sprint(len(tc.body)), tc.resp.GetHeaders().Get("content-length"))
			assert.Equal(t, tc.body, bodyString(t, tc.resp))
		})
	}

	_, err := NewJSONResponse(make(chan int))
	assert.Error(t, err)
	assert.Panics(t, func() { MustJSON(func() {}) })
}

func TestRedirect(t *testing.T) {
	testCases := []struct {
		name     string
		resp     Response
		status   StatusCode
		location string
	}{
		{"default found", NewRedirectResponse("/dashboard"), StatusFound, "/dashboard"},
		{"permanent", NewRedirectResponseWithCode("https://example.com/v2", StatusPermanentRedirect), StatusPermanentRedirect, "https://example.com/v2"},
		{"query kept", NewRedirectResponse("/search?q=test&page=1"), StatusFound, "/search?q=test&page=1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := tc.resp.(*RedirectResponse)
			require.True(t, ok)
			assert.Equal(t, tc.status, tc.resp.GetStatusCode())
			assert.Equal(t, tc.location, tc.resp.GetHeaders().Get("Location"))
			assert.Equal(t, "0", tc.resp.GetHeaders().Get("content-length"))
			assert.Nil(t, tc.resp.GetBody())

			rec := httptest.NewRecorder()
			require.NoError(t, Send(rec, tc.resp))
			assert.Equal(t, int(tc.status), rec.Code)
			assert.Equal(t, tc.location, rec.Header().Get("Location"))
			assert.Empty(t, rec.Body.String())
		})
	}
}

func TestFileResponse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("file contents"), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)

	resp := NewFileResponse(f)
	h := resp.GetHeaders()
	assert.Equal(t, "13", h.Get("content-length"))
	assert.True(t, strings.HasPrefix(h.Get("content-type"), "text/plain"))
	assert.True(t, strings.HasPrefix(h.Get("etag"), `"`))

	rec := httptest.NewRecorder()
	require.NoError(t, Send(rec, resp))
	assert.Equal(t, "file contents", rec.Body.String())

	// Send closes the file once written
	_, err = f.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestTemplateResponse(t *testing.T) {
	resp, err := NewTemplateResponse(`<h1>{{.Title}}</h1>`, map[string]string{"Title": "<hi>"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>&lt;hi&gt;</h1>", bodyString(t, resp))

	resp, err = NewTemplateResponseWithFuncs(`{{upper .}}`, template.FuncMap{"upper": strings.ToUpper}, "x")
	require.NoError(t, err)
	assert.Equal(t, "X", bodyString(t, resp))

	_, err = NewTemplateResponse(`{{.Broken`, nil)
	assert.Error(t, err)

	tmpl := template.Must(template.New("page").Parse(`{{.}}`))
	resp, err = NewTemplateResponseFromTemplate(tmpl, "ok")
	require.NoError(t, err)
	assert.Equal(t, "2", resp.GetHeaders().Get("content-length"))
}

func TestStreamResponse(t *testing.T) {
	resp := NewStreamResponse(func(w io.Writer) error {
		for i := range 3 {
			if _, err := fmt.Fprintf(w, "event %d\n", i); err != nil {
				return err
			}
		}
		return nil
	})
	assert.Equal(t, "event 0\nevent 1\nevent 2\n", bodyString(t, resp))
	assert.Empty(t, resp.GetHeaders().Get("content-length"))

	boom := errors.New("stream broke")
	failing := NewStreamResponse(func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	_, err := io.ReadAll(failing.GetBody())
	assert.ErrorIs(t, err, boom)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, "404 Not Found", StatusNotFound.String())
	assert.Equal(t, "599", StatusCode(599).String())
	assert.True(t, StatusBadGateway.IsError())
	assert.False(t, StatusFound.IsError())
}
