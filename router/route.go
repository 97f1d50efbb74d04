package router

import (
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/service"
)

// MethodAny registers a route that takes part for every request method.
const MethodAny = "*"

// Handler is the service every route is stored as.
type Handler = service.Service[*request.Request, response.Response]

// Middleware decorates route handlers.
type Middleware = service.Middleware[*request.Request, response.Response]

// Route is a registered (method, pattern, handler) triple.
type Route struct {
	Method  string
	Pattern Pattern
	Handler Handler
}

// Match is a route whose pattern matched a path, with its captures.
type Match struct {
	Route
	Params request.Params
}

// acceptsMethod reports whether the route takes part in a request with the
// given method. HEAD requests are also offered to GET routes.
func (rt Route) acceptsMethod(method string) bool {
	return rt.Method == method || rt.Method == MethodAny || (method == "HEAD" && rt.Method == "GET")
}
