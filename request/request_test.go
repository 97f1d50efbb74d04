package request

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeTracker struct {
	*strings.Reader
	closed bool
}

func (c *closeTracker) Close() error { c.closed = true; return nil }

func TestPathAndQuery(t *testing.T) {
	testCases := []struct {
		target    string
		path      string
		query     string
		newPath   string
		newTarget string
	}{
		{"/a/b", "/a/b", "", "/b", "/b"},
		{"/a/b?x=1&y=2", "/a/b", "x=1&y=2", "/b", "/b?x=1&y=2"},
		{"/?", "/", "", "/z", "/z?"},
	}

	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			r := New("GET", tc.target)
			assert.Equal(t, tc.path, r.Path())
			assert.Equal(t, tc.query, r.RawQuery())

			r.SetPath(tc.newPath)
			assert.Equal(t, tc.newTarget, r.Target)
		})
	}
}

func TestBodyIsReadOnce(t *testing.T) {
	src := &closeTracker{Reader: strings.NewReader("hello")}
	r := New("POST", "/").WithBody(src)

	b, err := r.Body()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.True(t, src.closed)

	b, err = r.Body()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	empty, err := New("GET", "/").Body()
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestExtensions(t *testing.T) {
	type userID int
	type token string

	var e Extensions
	_, ok := Get[userID](&e)
	assert.False(t, ok)

	Set(&e, userID(7))
	Set(&e, token("abc"))
	Set(&e, userID(8))
	assert.Equal(t, 2, e.Len())

	id, ok := Get[userID](&e)
	require.True(t, ok)
	assert.Equal(t, userID(8), id)

	c := e.Clone()
	removed, ok := Remove[token](&e)
	require.True(t, ok)
	assert.Equal(t, token("abc"), removed)
	assert.Equal(t, 1, e.Len())
	assert.Equal(t, 2, c.Len())

	_, ok = Remove[token](&e)
	assert.False(t, ok)
}

func TestClone(t *testing.T) {
	r := New("GET", "/a?x=1").WithHeader("accept", "text/plain")
	Set(r.Extensions(), Params{"id": "7"})

	c := r.Clone()
	c.SetPath("/b")
	c.WithHeader("x-extra", "1")
	Set(c.Extensions(), Params{"id": "8"})
	Remove[Params](c.Extensions())

	assert.Equal(t, "/a?x=1", r.Target)
	assert.Equal(t, "/b?x=1", c.Target)
	assert.False(t, r.Headers.Has("x-extra"))
	assert.Equal(t, "text/plain", c.Headers.Get("accept"))
	assert.Equal(t, "7", r.Param("id"))
	assert.Empty(t, c.Param("id"))
}

func TestParams(t *testing.T) {
	r := New("GET", "/users/42")
	assert.Nil(t, r.Params())
	assert.Equal(t, "", r.Param("id"))

	Set(r.Extensions(), Params{"id": "42"})
	assert.Equal(t, "42", r.Param("id"))
}

func TestFromHTTP(t *testing.T) {
	hr := httptest.NewRequest("POST", "http://example.com/upload?x=1", strings.NewReader("0123456789"))
	hr.Header.Add("Accept", "text/plain")
	hr.Header.Add("Accept", "text/html")

	t.Run("copies request line and headers", func(t *testing.T) {
		r := FromHTTP(hr, 0)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/upload?x=1", r.Target)
		assert.Equal(t, "1.1", r.HTTPVersion)
		assert.Equal(t, "example.com", r.Headers.Get("host"))
		assert.Equal(t, "text/plain, text/html", r.Headers.Get("accept"))
		assert.Equal(t, hr.RemoteAddr, r.RemoteAddr)

		b, err := r.Body()
		require.NoError(t, err)
		assert.Equal(t, "0123456789", string(b))
	})

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{"under limit", 20, false},
		{"exactly at limit", 10, false},
		{"over limit", 9, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hr := httptest.NewRequest("POST", "/", strings.NewReader("0123456789"))
			_, err := FromHTTP(hr, tt.limit).Body()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrBodyTooLarge))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
