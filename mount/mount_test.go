package mount

import (
	"context"
	"testing"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echo answers with the path it saw and the real path.
func echo() service.Service[*request.Request, string] {
	return service.Lift(func(_ context.Context, r *request.Request) string {
		return r.Target + " " + RealPath(r)
	})
}

func decline() service.Service[*request.Request, string] {
	return service.ServiceFunc[*request.Request, string](func(_ context.Context, r *request.Request) service.Outcome[string, *request.Request] {
		return service.Next[string](r)
	})
}

func TestNormalize(t *testing.T) {
	for in, want := range map[string]string{
		"":      "/",
		"/":     "/",
		"api":   "/api/",
		"/api":  "/api/",
		"/api/": "/api/",
		"a/b":   "/a/b/",
	} {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestMount(t *testing.T) {
	testCases := []struct {
		prefix string
		target string
		want   string // "" means declined
	}{
		{"/api", "/api/users", "/users /api/users"},
		{"/api", "/api/users/", "/users/ /api/users/"},
		{"/api/", "/api", "/ /api/"},
		{"api", "/api?x=1", "/?x=1 /api/"},
		{"/api", "/api/users?q=a", "/users?q=a /api/users"},
		{"/api", "/apix", ""},
		{"/api", "/ap", ""},
		{"/api", "/other/api", ""},
		{"/", "/anything", "/anything /anything"},
	}

	for _, tc := range testCases {
		t.Run(tc.prefix+" "+tc.target, func(t *testing.T) {
			req := request.New("GET", tc.target)
			out := Mount(tc.prefix, echo()).Call(context.Background(), req)
			if tc.want == "" {
				next, ok := out.Input()
				require.True(t, ok)
				assert.Equal(t, tc.target, next.Target)
				return
			}
			v, ok := out.Value()
			require.True(t, ok)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestNestedMounts(t *testing.T) {
	svc := Mount("/api", Mount("/v1", echo()))
	v, ok := svc.Call(context.Background(), request.New("GET", "/api/v1/items")).Value()
	require.True(t, ok)
	assert.Equal(t, "/items /api/v1/items", v)
}

func TestDeclineRestoresRequest(t *testing.T) {
	req := request.New("GET", "/api/v1/items?q=1")
	request.Set(req.Extensions(), MountPath{"/outer"})

	out := Mount("/api", Mount("/v1", decline())).Call(context.Background(), req)
	next, ok := out.Input()
	require.True(t, ok)
	assert.Equal(t, "/api/v1/items?q=1", next.Target)

	mp, ok := request.Get[MountPath](next.Extensions())
	require.True(t, ok)
	assert.Equal(t, MountPath{"/outer"}, mp)

	bare := request.New("GET", "/api/x")
	Mount("/api", decline()).Call(context.Background(), bare)
	_, ok = request.Get[MountPath](bare.Extensions())
	assert.False(t, ok)
}

func TestRealFilters(t *testing.T) {
	ctx := context.Background()
	capture := func(f service.Service[*request.Request, string]) string {
		v, ok := Mount("/api", f).Call(ctx, request.New("GET", "/api/users?page=2")).Value()
		require.True(t, ok)
		return v
	}

	path := service.Lift(func(ctx context.Context, r *request.Request) string {
		v, _ := RealPathFilter().Call(ctx, r).Value()
		return v.Values.V0
	})
	target := service.Lift(func(ctx context.Context, r *request.Request) string {
		v, _ := RealTargetFilter().Call(ctx, r).Value()
		return v.Values.V0
	})

	assert.Equal(t, "/api/users", capture(path))
	assert.Equal(t, "/api/users?page=2", capture(target))
	assert.Equal(t, "/plain", RealTarget(request.New("GET", "/plain")))
}
