package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shravanasati/relay/headers"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
)

func TestHeaders(t *testing.T) {
	mw, err := Headers("X-Frame-Options: DENY", "Cache-Control: no-store")
	require.NoError(t, err)

	inner := router.HandlerFunc(func(_ *request.Request) response.Response {
		return response.NewTextResponse("ok").WithHeader("cache-control", "max-age=60")
	})
	resp := call(t, mw(inner), newReq("GET", "/"))

	assert.Equal(t, "DENY", resp.GetHeaders().Get("x-frame-options"))
	assert.Equal(t, "max-age=60", resp.GetHeaders().Get("cache-control"), "reply headers win")
}

func TestHeadersMalformed(t *testing.T) {
	tests := []string{"no colon", "Bad Name: x", "X-Ok : spaced"}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			_, err := Headers(line)
			assert.ErrorIs(t, err, headers.ErrMalformedHeader)
		})
	}
}
