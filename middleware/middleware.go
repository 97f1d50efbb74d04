// Package middleware holds router.Middleware implementations for the HTTP
// side of a service graph: request logging, panic recovery, timeouts,
// authentication, cookies and sessions, cross-origin checks, rate
// limiting, metrics and static files.
//
// Every middleware hands a declined request on untouched, so a wrapped
// service still takes part in routing exactly like the bare one.
package middleware

import (
	"context"
	"errors"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
	"github.com/shravanasati/relay/service"
)

type outcome = service.Outcome[response.Response, *request.Request]

func handler(f func(ctx context.Context, r *request.Request) outcome) router.Handler {
	return service.ServiceFunc[*request.Request, response.Response](f)
}

func reply(resp response.Response) outcome {
	return service.Success[response.Response, *request.Request](resp)
}

func failure(err error) outcome {
	return service.Failure[response.Response, *request.Request](err)
}

// statusOf reports the status a bridge would write for out. Declines have
// no status yet and report false.
func statusOf(out outcome) (response.StatusCode, bool) {
	if resp, ok := out.Value(); ok {
		return resp.GetStatusCode(), true
	}
	if err := out.Err(); err != nil {
		var rerr *router.Error
		if errors.As(err, &rerr) {
			return rerr.Status, true
		}
		return response.StatusInternalServerError, true
	}
	return 0, false
}
