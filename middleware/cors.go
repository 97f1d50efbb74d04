package middleware

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/shravanasati/relay/headers"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
)

// CorsOptions is a configuration container to setup the CORS middleware.
// The handling follows github.com/go-chi/cors.
type CorsOptions struct {
	// AllowedOrigins is a list of origins a cross-domain request can be executed from.
	// If the special "*" value is present in the list, all origins will be allowed.
	// An origin may contain one wildcard (*) to replace 0 or more characters
	// (i.e.: http://*.domain.com). Default value is ["*"].
	AllowedOrigins []string

	// AllowOriginFunc validates the origin. If set, AllowedOrigins is ignored.
	AllowOriginFunc func(r *request.Request, origin string) bool

	// AllowedMethods is a list of methods the client is allowed to use with
	// cross-domain requests. Default value is simple methods (HEAD, GET and POST).
	AllowedMethods []string

	// AllowedHeaders is list of non simple headers the client is allowed to use with
	// cross-domain requests. "*" allows all headers.
	// Default value is [] but "Origin" is always appended to the list.
	AllowedHeaders []string

	// ExposedHeaders indicates which headers are safe to expose to the API of a CORS
	// API specification
	ExposedHeaders []string

	// AllowCredentials indicates whether the request can include user credentials like
	// cookies, HTTP authentication or client side SSL certificates.
	AllowCredentials bool

	// MaxAge indicates how long (in seconds) the results of a preflight request
	// can be cached
	MaxAge int

	// OptionsPassthrough offers preflight requests to the wrapped service.
	// Turn this on if your application handles OPTIONS.
	OptionsPassthrough bool
}

// Cors applies the CORS rules to the requests of the service it wraps.
type Cors struct {
	allowedOrigins  []string
	allowedWOrigins []wildcard
	allowOriginFunc func(r *request.Request, origin string) bool
	allowedHeaders  []string
	allowedMethods  []string
	exposedHeaders  []string
	maxAge          int

	// set when the corresponding list contains "*"
	allowedOriginsAll bool
	allowedHeadersAll bool

	allowCredentials  bool
	optionPassthrough bool
}

type wildcard struct {
	prefix string
	suffix string
}

func (w wildcard) match(s string) bool {
	return len(s) >= len(w.prefix)+len(w.suffix) && strings.HasPrefix(s, w.prefix) && strings.HasSuffix(s, w.suffix)
}

func convert(s []string, f func(string) string) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		out = append(out, f(v))
	}
	return out
}

// parseHeaderList splits a comma separated header list into canonical keys.
func parseHeaderList(list string) []string {
	var out []string
	for _, h := range strings.Split(list, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, http.CanonicalHeaderKey(h))
		}
	}
	return out
}

// NewCors creates a Cors middleware with the provided options.
func NewCors(options CorsOptions) *Cors {
	c := &Cors{
		exposedHeaders:    convert(options.ExposedHeaders, http.CanonicalHeaderKey),
		allowOriginFunc:   options.AllowOriginFunc,
		allowCredentials:  options.AllowCredentials,
		maxAge:            options.MaxAge,
		optionPassthrough: options.OptionsPassthrough,
	}

	// origins and methods are matched case-insensitively
	if len(options.AllowedOrigins) == 0 {
		if options.AllowOriginFunc == nil {
			c.allowedOriginsAll = true
		}
	} else {
		for _, origin := range options.AllowedOrigins {
			origin = strings.ToLower(origin)
			if origin == "*" {
				c.allowedOriginsAll = true
				c.allowedOrigins = nil
				c.allowedWOrigins = nil
				break
			} else if i := strings.IndexByte(origin, '*'); i >= 0 {
				c.allowedWOrigins = append(c.allowedWOrigins, wildcard{origin[0:i], origin[i+1:]})
			} else {
				c.allowedOrigins = append(c.allowedOrigins, origin)
			}
		}
	}

	if len(options.AllowedHeaders) == 0 {
		c.allowedHeaders = []string{"Origin", "Accept", "Content-Type"}
	} else {
		// browsers may always ask for Origin at preflight
		c.allowedHeaders = convert(append(slices.Clone(options.AllowedHeaders), "Origin"), http.CanonicalHeaderKey)
		if slices.Contains(options.AllowedHeaders, "*") {
			c.allowedHeadersAll = true
			c.allowedHeaders = nil
		}
	}

	if len(options.AllowedMethods) == 0 {
		c.allowedMethods = []string{"GET", "POST", "HEAD"}
	} else {
		c.allowedMethods = convert(options.AllowedMethods, strings.ToUpper)
	}

	return c
}

// CorsHandler creates a CORS middleware with the passed options.
func CorsHandler(options CorsOptions) router.Middleware {
	return NewCors(options).Handler
}

// AllowAll creates a permissive Cors allowing all origins with all standard
// methods with any header and no credentials.
func AllowAll() *Cors {
	return NewCors(CorsOptions{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"DELETE", "HEAD", "GET", "POST", "PUT", "PATCH"},
		AllowedHeaders: []string{"*"},
	})
}

// Handler applies the CORS rules and adds the CORS headers to the reply.
// Preflight requests are answered here unless OptionsPassthrough is set;
// with passthrough, a preflight the wrapped service declines is still
// answered here.
func (c *Cors) Handler(next router.Handler) router.Handler {
	return handler(func(ctx context.Context, r *request.Request) outcome {
		if c.isPreflight(r) {
			h := c.handlePreflight(r)
			if c.optionPassthrough {
				out := next.Call(ctx, r)
				if resp, ok := out.Value(); ok {
					setAll(resp.GetHeaders(), h)
					return out
				}
				if !out.IsNext() {
					return out
				}
			}
			resp := response.NewBaseResponse().WithStatusCode(response.StatusOK)
			setAll(resp.GetHeaders(), h)
			return reply(resp)
		}

		h := c.handleActualRequest(r)
		out := next.Call(ctx, r)
		if resp, ok := out.Value(); ok {
			for k, v := range h.All() {
				if k == "vary" {
					resp.GetHeaders().Add(k, v)
				} else {
					resp.GetHeaders().Set(k, v)
				}
			}
		}
		return out
	})
}

func setAll(dst, src *headers.Headers) {
	for k, v := range src.All() {
		dst.Set(k, v)
	}
}

func (c *Cors) isPreflight(r *request.Request) bool {
	return r.Method == "OPTIONS" && r.Headers.Get("Origin") != "" && r.Headers.Get("Access-Control-Request-Method") != ""
}

// handlePreflight handles pre-flight CORS requests
func (c *Cors) handlePreflight(r *request.Request) *headers.Headers {
	h := headers.NewHeaders()
	origin := r.Headers.Get("Origin")

	if r.Method != "OPTIONS" {
		return h
	}
	// Always set Vary headers, see https://github.com/rs/cors/issues/10
	h.Add("Vary", "Origin")
	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")

	if !c.isOriginAllowed(r, origin) {
		return h
	}

	reqMethod := r.Headers.Get("Access-Control-Request-Method")
	if !c.isMethodAllowed(reqMethod) {
		return h
	}
	reqHeaders := parseHeaderList(r.Headers.Get("Access-Control-Request-Headers"))
	if !c.areHeadersAllowed(reqHeaders) {
		return h
	}
	if c.allowedOriginsAll {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		h.Set("Access-Control-Allow-Origin", origin)
	}
	// echoing the requested method and headers is enough
	h.Set("Access-Control-Allow-Methods", strings.ToUpper(reqMethod))
	if len(reqHeaders) > 0 {
		h.Set("Access-Control-Allow-Headers", strings.Join(reqHeaders, ", "))
	}
	if c.allowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if c.maxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(c.maxAge))
	}
	return h
}

// handleActualRequest handles simple cross-origin requests, actual request or redirects
func (c *Cors) handleActualRequest(r *request.Request) *headers.Headers {
	h := headers.NewHeaders()
	origin := r.Headers.Get("Origin")

	h.Add("Vary", "Origin")

	if origin == "" || !c.isOriginAllowed(r, origin) {
		return h
	}
	// Simple methods are not required to be checked, but restricting them is useful.
	if !c.isMethodAllowed(r.Method) {
		return h
	}
	if c.allowedOriginsAll {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		h.Set("Access-Control-Allow-Origin", origin)
	}
	if len(c.exposedHeaders) > 0 {
		h.Set("Access-Control-Expose-Headers", strings.Join(c.exposedHeaders, ", "))
	}
	if c.allowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	return h
}

func (c *Cors) isOriginAllowed(r *request.Request, origin string) bool {
	if c.allowOriginFunc != nil {
		return c.allowOriginFunc(r, origin)
	}
	if c.allowedOriginsAll {
		return true
	}
	origin = strings.ToLower(origin)
	if slices.Contains(c.allowedOrigins, origin) {
		return true
	}
	for _, w := range c.allowedWOrigins {
		if w.match(origin) {
			return true
		}
	}
	return false
}

func (c *Cors) isMethodAllowed(method string) bool {
	if len(c.allowedMethods) == 0 {
		// no method allowed, not even for preflight
		return false
	}
	method = strings.ToUpper(method)
	if method == "OPTIONS" {
		return true
	}
	return slices.Contains(c.allowedMethods, method)
}

func (c *Cors) areHeadersAllowed(requested []string) bool {
	if c.allowedHeadersAll || len(requested) == 0 {
		return true
	}
	for _, header := range requested {
		if !slices.Contains(c.allowedHeaders, http.CanonicalHeaderKey(header)) {
			return false
		}
	}
	return true
}
