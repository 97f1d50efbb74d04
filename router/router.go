// Package router dispatches requests among registered services by path.
//
// Every route whose pattern matches the request path is a candidate. The
// candidates whose method fits the request are tried in registration
// order; the first one that does not decline wins. When all of them
// decline, so does the router, which lets routers be chained and mounted
// inside one another.
package router

import (
	"context"
	"fmt"
	"slices"

	"github.com/shravanasati/relay/combinator"
	"github.com/shravanasati/relay/mount"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/service"
)

// Options tune the router service.
type Options struct {
	// HeadStatus replaces the status of a GET response served for a HEAD
	// request. Zero keeps the GET status. A bodyless status such as 204
	// makes net/http drop Content-Length on the wire.
	HeadStatus response.StatusCode

	// MethodNotAllowed makes the router answer 405 with an Allow header
	// when routes matched the path but none accepted the method, instead
	// of declining.
	MethodNotAllowed bool
}

// Router is a set of routes in a path trie. Build it, then call Service
// once; the service is a snapshot and later registrations do not affect it.
type Router struct {
	routes      []Route
	decorate    Middleware
	middlewares []Middleware
	opts        Options
}

// NewRouter creates an empty router. opts may be nil.
func NewRouter(opts *Options) *Router {
	r := &Router{}
	if opts != nil {
		r.opts = *opts
	}
	return r
}

// Register adds a route. It fails only for a malformed pattern.
func (r *Router) Register(method, pattern string, h Handler) error {
	p, err := ParsePattern(pattern)
	if err != nil {
		return err
	}
	r.add(Route{Method: method, Pattern: p, Handler: h})
	return nil
}

// add stores a route, coercing its failures to *Error and applying the
// router's decoration.
func (r *Router) add(rt Route) {
	h := combinator.ErrInto(rt.Handler, Internal)
	if r.decorate != nil {
		h = r.decorate(h)
	}
	rt.Handler = h
	r.routes = append(r.routes, rt)
}

// MustRegister is Register that panics on a malformed pattern.
func (r *Router) MustRegister(method, pattern string, h Handler) {
	if err := r.Register(method, pattern, h); err != nil {
		panic(err)
	}
}

// Get registers a new GET route. HEAD requests are served by it too.
func (r *Router) Get(path string, h Handler) { r.MustRegister("GET", path, h) }

// Post registers a new POST route.
func (r *Router) Post(path string, h Handler) { r.MustRegister("POST", path, h) }

// Put registers a new PUT route.
func (r *Router) Put(path string, h Handler) { r.MustRegister("PUT", path, h) }

// Patch registers a new PATCH route.
func (r *Router) Patch(path string, h Handler) { r.MustRegister("PATCH", path, h) }

// Delete registers a new DELETE route.
func (r *Router) Delete(path string, h Handler) { r.MustRegister("DELETE", path, h) }

// Options registers a new OPTIONS route.
func (r *Router) Options(path string, h Handler) { r.MustRegister("OPTIONS", path, h) }

// Head registers a new HEAD route.
func (r *Router) Head(path string, h Handler) { r.MustRegister("HEAD", path, h) }

// Any registers a route for every method.
func (r *Router) Any(path string, h Handler) { r.MustRegister(MethodAny, path, h) }

// Use adds middleware around the whole router service. Unlike Wrap, it
// also sees requests that no route matches.
func (r *Router) Use(m ...Middleware) {
	r.middlewares = append(r.middlewares, m...)
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []Route {
	return slices.Clone(r.routes)
}

// Mount registers every route of other under prefix. The routes keep their
// order and are decorated by this router's Wrap middleware, if any.
func (r *Router) Mount(prefix string, other *Router) error {
	pp, err := ParsePattern(prefix)
	if err != nil {
		return err
	}
	mounted := make([]Route, 0, len(other.routes))
	for _, rt := range other.routes {
		p, err := rt.Pattern.prefixed(pp)
		if err != nil {
			return err
		}
		rt.Pattern = p
		mounted = append(mounted, rt)
	}
	for _, rt := range mounted {
		r.add(rt)
	}
	return nil
}

// MountService forwards every request under prefix, for any method, to h
// with the prefix stripped from the path. See mount.Mount. The prefix is
// matched literally, so it may not hold captures or a wildcard.
func (r *Router) MountService(prefix string, h Handler) error {
	pp, err := ParsePattern(prefix)
	if err != nil {
		return err
	}
	for _, seg := range pp.segments {
		if seg.kind != segmentStatic {
			return fmt.Errorf("%w %q: a service mount prefix must be literal", ErrInvalidPattern, prefix)
		}
	}
	p, err := MustParsePattern("/*mounted").prefixed(pp)
	if err != nil {
		return err
	}
	r.add(Route{Method: MethodAny, Pattern: p, Handler: mount.Mount(prefix, h)})
	return nil
}

// Extend appends every route of other as is.
func (r *Router) Extend(other *Router) {
	for _, rt := range other.routes {
		r.add(rt)
	}
}

// Wrap returns a router whose every route, the existing ones and any added
// later by Register, Mount or Extend, is decorated with mw. Wrapping twice
// nests: Wrap(a).Wrap(b) decorates like Wrap(service.Compose(b, a)).
// The receiver should not be used afterwards.
func (r *Router) Wrap(mw Middleware) *Router {
	wrapped := &Router{
		routes:      make([]Route, 0, len(r.routes)),
		decorate:    service.Compose(mw, r.decorate),
		middlewares: slices.Clone(r.middlewares),
		opts:        r.opts,
	}
	for _, rt := range r.routes {
		rt.Handler = mw(rt.Handler)
		wrapped.routes = append(wrapped.routes, rt)
	}
	return wrapped
}

// Find returns every route whose pattern matches path, whatever its
// method, in registration order.
func (r *Router) Find(path string) []Match {
	return newTable(r.routes).find(path)
}

// Allowed returns the methods accepted at path, sorted. GET implies HEAD.
func (r *Router) Allowed(path string) []string {
	return allowed(r.Find(path))
}

func allowed(matches []Match) []string {
	var methods []string
	for _, m := range matches {
		switch m.Method {
		case MethodAny:
			continue
		case "GET":
			methods = append(methods, "GET", "HEAD")
		default:
			methods = append(methods, m.Method)
		}
	}
	slices.Sort(methods)
	return slices.Compact(methods)
}

// table is an immutable snapshot of the routes and their trie.
type table struct {
	routes []Route
	root   *TrieNode
}

func newTable(routes []Route) *table {
	t := &table{routes: slices.Clone(routes), root: NewTrieNode()}
	for id, rt := range t.routes {
		t.root.AddRoute(rt.Pattern, id)
	}
	return t
}

func (t *table) find(path string) []Match {
	found := t.root.Match(path)
	slices.SortFunc(found, func(a, b trieMatch) int { return a.id - b.id })

	matches := make([]Match, 0, len(found))
	for _, f := range found {
		rt := t.routes[f.id]
		matches = append(matches, Match{Route: rt, Params: rt.Pattern.params(f.captured)})
	}
	return matches
}

// HandlerFunc adapts a plain function that always answers.
func HandlerFunc(f func(*request.Request) response.Response) Handler {
	return service.ServiceFunc[*request.Request, response.Response](func(_ context.Context, r *request.Request) service.Outcome[response.Response, *request.Request] {
		return service.Success[response.Response, *request.Request](f(r))
	})
}
