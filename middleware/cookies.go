package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/router"
)

// Jar holds the cookies a request arrived with and the ones set or removed
// while serving it. It is safe for concurrent use.
type Jar struct {
	mu       sync.Mutex
	incoming map[string]*http.Cookie
	changes  map[string]*http.Cookie
	order    []string
}

func newJar(header string) *Jar {
	j := &Jar{
		incoming: make(map[string]*http.Cookie),
		changes:  make(map[string]*http.Cookie),
	}
	for part := range strings.SplitSeq(header, ";") {
		parsed, err := http.ParseCookie(strings.TrimSpace(part))
		if err != nil {
			// a malformed pair does not spoil the others
			continue
		}
		for _, c := range parsed {
			if _, seen := j.incoming[c.Name]; !seen {
				j.incoming[c.Name] = c
			}
		}
	}
	return j
}

// Get returns a cookie, as set while serving the request or else as sent by
// the client. A removed cookie is reported absent.
func (j *Jar) Get(name string) (*http.Cookie, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if c, ok := j.changes[name]; ok {
		if c.MaxAge < 0 {
			return nil, false
		}
		return c, true
	}
	c, ok := j.incoming[name]
	return c, ok
}

// Add sets a cookie on the response. A later Add or Remove of the same name
// replaces it.
func (j *Jar) Add(c *http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.changes[c.Name]; !ok {
		j.order = append(j.order, c.Name)
	}
	j.changes[c.Name] = c
}

// Remove tells the client to drop a cookie set for path "/".
func (j *Jar) Remove(name string) {
	j.Add(&http.Cookie{Name: name, Path: "/", MaxAge: -1})
}

// Delta returns the cookies added or removed, in the order first touched.
func (j *Jar) Delta() []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*http.Cookie, 0, len(j.order))
	for _, name := range j.order {
		out = append(out, j.changes[name])
	}
	return out
}

// JarFrom returns the jar Cookies attached to the request.
func JarFrom(r *request.Request) (*Jar, bool) {
	return request.Get[*Jar](r.Extensions())
}

// Cookies attaches a Jar built from the Cookie header to every request.
// When the wrapped service replies, each cookie in the jar's Delta becomes
// a Set-Cookie line of the response. A declined request gets its previous
// jar back, or none.
func Cookies() router.Middleware {
	return func(next router.Handler) router.Handler {
		return handler(func(ctx context.Context, r *request.Request) outcome {
			ext := r.Extensions()
			prev, hadPrev := request.Get[*Jar](ext)
			jar := newJar(r.Headers.Get("cookie"))
			request.Set(ext, jar)

			out := next.Call(ctx, r)
			if in, ok := out.Input(); ok {
				if hadPrev {
					request.Set(in.Extensions(), prev)
				} else {
					request.Remove[*Jar](in.Extensions())
				}
				return out
			}
			if resp, ok := out.Value(); ok {
				for _, c := range jar.Delta() {
					if line := c.String(); line != "" {
						resp.WithHeader("set-cookie", line)
					}
				}
			}
			return out
		})
	}
}
