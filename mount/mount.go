// Package mount forwards requests under a path prefix to a service that
// only sees the remainder of the path.
package mount

import (
	"context"
	"strings"

	"github.com/shravanasati/relay/extract"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/service"
)

// MountPath lists the prefixes stripped from a request, outermost first,
// each without its trailing slash.
type MountPath []string

// Join concatenates the prefixes.
func (m MountPath) Join() string { return strings.Join(m, "") }

// Normalize turns a prefix into the "/x/" form used for matching: a
// leading and a trailing slash, "/" for the empty prefix.
func Normalize(prefix string) string {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// Mount forwards requests whose path lies under prefix to svc, with the
// prefix stripped from the path and pushed onto the request's MountPath.
// Other requests are declined untouched. If svc declines, the path and the
// MountPath are restored before the decline is passed on.
func Mount[S any](prefix string, svc service.Service[*request.Request, S]) service.Service[*request.Request, S] {
	norm := Normalize(prefix)
	bare := norm[:len(norm)-1]

	return service.ServiceFunc[*request.Request, S](func(ctx context.Context, req *request.Request) service.Outcome[S, *request.Request] {
		path := req.Path()
		if !under(path, norm) {
			return service.Next[S](req)
		}

		target := req.Target
		ext := req.Extensions()
		prev, hadPrev := request.Get[MountPath](ext)

		rest := path[len(bare):]
		if rest == "" {
			rest = "/"
		}
		req.SetPath(rest)
		pushed := make(MountPath, 0, len(prev)+1)
		request.Set(ext, append(append(pushed, prev...), bare))

		out := svc.Call(ctx, req)
		if next, ok := out.Input(); ok {
			next.Target = target
			if hadPrev {
				request.Set(next.Extensions(), prev)
			} else {
				request.Remove[MountPath](next.Extensions())
			}
		}
		return out
	})
}

// under reports whether path is the prefix itself or lies below it.
func under(path, norm string) bool {
	if len(path) < len(norm) {
		return path == norm[:len(norm)-1]
	}
	return strings.HasPrefix(path, norm)
}

// RealPath is the path the request had before any mount stripped it.
func RealPath(req *request.Request) string {
	mp, _ := request.Get[MountPath](req.Extensions())
	return mp.Join() + req.Path()
}

// RealTarget is RealPath followed by the query string, if any.
func RealTarget(req *request.Request) string {
	if q := req.RawQuery(); q != "" || strings.Contains(req.Target, "?") {
		return RealPath(req) + "?" + q
	}
	return RealPath(req)
}

// RealPathFilter extracts RealPath.
func RealPathFilter() service.Service[*request.Request, extract.Extract[*request.Request, extract.One[string]]] {
	return extract.Func(func(_ context.Context, req *request.Request) (string, error) {
		return RealPath(req), nil
	})
}

// RealTargetFilter extracts RealTarget.
func RealTargetFilter() service.Service[*request.Request, extract.Extract[*request.Request, extract.One[string]]] {
	return extract.Func(func(_ context.Context, req *request.Request) (string, error) {
		return RealTarget(req), nil
	})
}
