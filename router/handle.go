package router

import (
	"context"

	"github.com/shravanasati/relay/combinator"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/service"
)

// Reply turns a service with any success type into a route handler by
// converting each success value with reply.
func Reply[S any](svc service.Service[*request.Request, S], reply func(S) response.Response) Handler {
	return combinator.Then(svc, func(_ context.Context, v S) (response.Response, error) {
		return reply(v), nil
	})
}

// Handle registers a service with any success type, converting its values
// with reply.
func Handle[S any](r *Router, method, pattern string, svc service.Service[*request.Request, S], reply func(S) response.Response) error {
	return r.Register(method, pattern, Reply(svc, reply))
}

// Text is a reply function for services that produce a string.
func Text(s string) response.Response { return response.NewTextResponse(s) }

// JSON is a reply function for services that produce a JSON-encodable
// value. Encoding failures become a 500 response.
func JSON[T any](v T) response.Response {
	resp, err := response.NewJSONResponse(v)
	if err != nil {
		return response.NewStatusResponse(response.StatusInternalServerError)
	}
	return resp
}
