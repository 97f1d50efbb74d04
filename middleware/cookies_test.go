package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/service"
)

func TestJar(t *testing.T) {
	j := newJar(`theme=dark; bad pair; lang="en"; theme=light`)

	c, ok := j.Get("theme")
	require.True(t, ok)
	assert.Equal(t, "dark", c.Value, "first occurrence wins")
	c, ok = j.Get("lang")
	require.True(t, ok)
	assert.Equal(t, "en", c.Value)
	assert.Empty(t, j.Delta())

	j.Add(&http.Cookie{Name: "theme", Value: "light"})
	j.Remove("lang")
	j.Add(&http.Cookie{Name: "theme", Value: "blue"})

	c, ok = j.Get("theme")
	require.True(t, ok)
	assert.Equal(t, "blue", c.Value)
	_, ok = j.Get("lang")
	assert.False(t, ok, "removed cookie is gone")

	delta := j.Delta()
	require.Len(t, delta, 2)
	assert.Equal(t, "theme=blue", delta[0].String())
	assert.Equal(t, "lang=; Path=/; Max-Age=0", delta[1].String())

	assert.Empty(t, newJar("").Delta())
	_, ok = newJar("").Get("x")
	assert.False(t, ok)
}

func TestCookies(t *testing.T) {
	setting := handler(func(_ context.Context, r *request.Request) outcome {
		jar, ok := JarFrom(r)
		require.True(t, ok)
		seen, _ := jar.Get("visit")
		jar.Add(&http.Cookie{Name: "visit", Value: seen.Value + "1"})
		jar.Add(&http.Cookie{Name: "flash", Value: "hi", HttpOnly: true})
		return reply(response.NewTextResponse("ok"))
	})

	t.Run("reply gets every cookie line", func(t *testing.T) {
		req := newReq("GET", "/").WithHeader("Cookie", "visit=1")
		resp := call(t, Cookies()(setting), req)
		assert.Equal(t, []string{"visit=11", "flash=hi; HttpOnly"}, resp.GetHeaders().Values("set-cookie"))
	})

	t.Run("decline removes the jar", func(t *testing.T) {
		req := newReq("GET", "/")
		out := Cookies()(declineHandler).Call(context.Background(), req)
		in, ok := out.Input()
		require.True(t, ok)
		assert.Same(t, req, in)
		_, ok = JarFrom(req)
		assert.False(t, ok)
		assert.Equal(t, 0, req.Extensions().Len())
	})

	t.Run("decline restores an outer jar", func(t *testing.T) {
		req := newReq("GET", "/")
		outer := newJar("a=1")
		request.Set(req.Extensions(), outer)
		Cookies()(declineHandler).Call(context.Background(), req)
		got, ok := JarFrom(req)
		require.True(t, ok)
		assert.Same(t, outer, got)
	})

	t.Run("failure writes nothing", func(t *testing.T) {
		failing := handler(func(_ context.Context, r *request.Request) outcome {
			jar, _ := JarFrom(r)
			jar.Add(&http.Cookie{Name: "x", Value: "1"})
			return service.Failure[response.Response, *request.Request](errors.New("boom"))
		})
		out := Cookies()(failing).Call(context.Background(), newReq("GET", "/"))
		assert.True(t, out.IsFailure())
	})
}
