package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
	"github.com/shravanasati/relay/service"
)

func TestTimeout(t *testing.T) {
	slow := handler(func(ctx context.Context, _ *request.Request) outcome {
		<-ctx.Done()
		return reply(response.NewTextResponse("late"))
	})

	t.Run("fast service replies", func(t *testing.T) {
		resp := call(t, Timeout(time.Second)(okHandler), newReq("GET", "/"))
		assert.Equal(t, response.StatusOK, resp.GetStatusCode())
	})

	t.Run("decline passes through", func(t *testing.T) {
		req := newReq("GET", "/")
		out := Timeout(time.Second)(declineHandler).Call(context.Background(), req)
		in, ok := out.Input()
		require.True(t, ok)
		assert.Same(t, req, in)
	})

	t.Run("decline in time hands back changes", func(t *testing.T) {
		tagging := handler(func(_ context.Context, r *request.Request) outcome {
			r.WithHeader("x-seen", "1")
			return service.Next[response.Response](r)
		})
		req := newReq("GET", "/")
		out := Timeout(time.Second)(tagging).Call(context.Background(), req)
		in, ok := out.Input()
		require.True(t, ok)
		assert.Same(t, req, in)
		assert.Equal(t, "1", req.Headers.Get("x-seen"))
	})

	t.Run("abandoned request left alone", func(t *testing.T) {
		release := make(chan struct{})
		finished := make(chan struct{})
		rewriting := handler(func(_ context.Context, r *request.Request) outcome {
			defer close(finished)
			<-release
			r.SetPath("/rewritten")
			r.WithHeader("x-late", "1")
			return service.Next[response.Response](r)
		})

		req := newReq("GET", "/orig?q=1")
		out := Timeout(5*time.Millisecond)(rewriting).Call(context.Background(), req)
		close(release)
		<-finished

		require.True(t, out.IsFailure())
		assert.ErrorIs(t, out.Err(), ErrTimeout)
		assert.Equal(t, "/orig?q=1", req.Target)
		assert.False(t, req.Headers.Has("x-late"))
	})

	t.Run("slow service fails", func(t *testing.T) {
		out := TimeoutWithStatus(10*time.Millisecond, response.StatusGatewayTimeout)(slow).
			Call(context.Background(), newReq("GET", "/"))
		require.True(t, out.IsFailure())

		var rerr *router.Error
		require.ErrorAs(t, out.Err(), &rerr)
		assert.Equal(t, response.StatusGatewayTimeout, rerr.Status)
		assert.ErrorIs(t, out.Err(), ErrTimeout)
	})

	t.Run("caller cancellation wins", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		out := Timeout(time.Second)(slow).Call(ctx, newReq("GET", "/"))
		require.True(t, out.IsFailure())
		assert.ErrorIs(t, out.Err(), context.Canceled)
	})

	t.Run("panic becomes failure", func(t *testing.T) {
		boom := router.HandlerFunc(func(_ *request.Request) response.Response { panic("boom") })
		out := Timeout(time.Second)(boom).Call(context.Background(), newReq("GET", "/"))
		require.True(t, out.IsFailure())
		assert.Contains(t, out.Err().Error(), "boom")
	})
}
