// Package filters holds ready-made extractors for requests. A filter either
// declines the request, fails it, or succeeds with the request handed back
// together with the values it extracted, so filters chain with
// combinator.And and friends.
package filters

import (
	"context"
	"net/url"
	"strings"

	"github.com/shravanasati/relay/extract"
	"github.com/shravanasati/relay/mount"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/service"
)

// Filter extracts nothing; it only accepts or declines.
type Filter = service.Service[*request.Request, extract.Extract[*request.Request, extract.Unit]]

// Extractor extracts a single value.
type Extractor[T any] = service.Service[*request.Request, extract.Extract[*request.Request, extract.One[T]]]

// Method accepts requests whose method is one of methods.
func Method(methods ...string) Filter {
	return extract.Filter(func(r *request.Request) bool {
		for _, m := range methods {
			if strings.EqualFold(m, r.Method) {
				return true
			}
		}
		return false
	})
}

func Get() Filter    { return Method("GET", "HEAD") }
func Post() Filter   { return Method("POST") }
func Put() Filter    { return Method("PUT") }
func Patch() Filter  { return Method("PATCH") }
func Delete() Filter { return Method("DELETE") }

// Path accepts requests whose path, after any mount stripped its prefix,
// is exactly path. Trailing slashes are significant.
func Path(path string) Filter {
	return extract.Filter(func(r *request.Request) bool {
		return r.Path() == path
	})
}

// Param extracts a route capture. It declines when the matched route has
// no capture of that name.
func Param(name string) Extractor[string] {
	return extract.Optional(func(_ context.Context, r *request.Request) (string, bool) {
		v, ok := r.Params()[name]
		return v, ok
	})
}

// Header extracts a header value and declines when it is absent.
func Header(name string) Extractor[string] {
	return extract.Optional(func(_ context.Context, r *request.Request) (string, bool) {
		if !r.Headers.Has(name) {
			return "", false
		}
		return r.Headers.Get(name), true
	})
}

// HeaderEquals accepts requests whose header name has exactly value,
// compared case-insensitively.
func HeaderEquals(name, value string) Filter {
	return extract.Filter(func(r *request.Request) bool {
		return r.Headers.Has(name) && strings.EqualFold(r.Headers.Get(name), value)
	})
}

// Query extracts the first value of a query parameter and declines when it
// is absent.
func Query(name string) Extractor[string] {
	return extract.Optional(func(_ context.Context, r *request.Request) (string, bool) {
		values, err := url.ParseQuery(r.RawQuery())
		if err != nil || !values.Has(name) {
			return "", false
		}
		return values.Get(name), true
	})
}

// QueryValues extracts the whole parsed query string. A malformed query
// fails with 400.
func QueryValues() Extractor[url.Values] {
	return extract.Func(func(_ context.Context, r *request.Request) (url.Values, error) {
		values, err := url.ParseQuery(r.RawQuery())
		if err != nil {
			return nil, badRequest("malformed query: %w", err)
		}
		return values, nil
	})
}

// RealPath extracts the path the request had before any mount stripped it.
func RealPath() Extractor[string] { return mount.RealPathFilter() }

// RealTarget extracts RealPath with the query string.
func RealTarget() Extractor[string] { return mount.RealTargetFilter() }

// Ext extracts the value of type T that an earlier stage attached to the
// request, and declines when there is none.
func Ext[T any]() Extractor[T] {
	return extract.Optional(func(_ context.Context, r *request.Request) (T, bool) {
		return request.Get[T](r.Extensions())
	})
}

// State extracts a copy of s for every request.
func State[T any](s T) Extractor[T] {
	return extract.State[*request.Request](s)
}

// Any accepts every request.
func Any() Filter {
	return extract.Any[*request.Request]()
}
