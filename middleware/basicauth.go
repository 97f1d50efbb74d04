package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
)

type Account struct {
	Username string
	Password string
}

// AuthUser is attached to the request extensions once basic auth succeeds.
type AuthUser string

// UserFrom returns the user that basic auth admitted, if any.
func UserFrom(r *request.Request) (string, bool) {
	u, ok := request.Get[AuthUser](r.Extensions())
	return string(u), ok
}

func BasicAuth(accounts []Account) router.Middleware {
	accountMap := make(map[string]string)
	for _, acc := range accounts {
		accountMap[acc.Username] = acc.Password
	}

	unauthorized := func() outcome {
		return reply(response.NewBaseResponse().
			WithStatusCode(response.StatusUnauthorized).
			WithHeader("www-authenticate", `Basic realm="Restricted"`))
	}
	malformed := func() outcome {
		return reply(response.NewTextResponse("Invalid authorization header").
			WithStatusCode(response.StatusBadRequest))
	}

	return func(next router.Handler) router.Handler {
		return handler(func(ctx context.Context, r *request.Request) outcome {
			auth := r.Headers.Get("Authorization")
			if !strings.HasPrefix(auth, "Basic ") {
				return unauthorized()
			}

			payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
			if err != nil {
				return malformed()
			}

			user, pass, ok := strings.Cut(string(payload), ":")
			if !ok {
				return malformed()
			}

			actualPass, ok := accountMap[user]
			if !ok || subtle.ConstantTimeCompare([]byte(actualPass), []byte(pass)) != 1 {
				return unauthorized()
			}

			ext := r.Extensions()
			prev, hadPrev := request.Get[AuthUser](ext)
			request.Set(ext, AuthUser(user))

			out := next.Call(ctx, r)
			if in, ok := out.Input(); ok {
				if hadPrev {
					request.Set(in.Extensions(), prev)
				} else {
					request.Remove[AuthUser](in.Extensions())
				}
			}
			return out
		})
	}
}
