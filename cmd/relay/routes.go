package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shravanasati/relay/combinator"
	"github.com/shravanasati/relay/extract"
	"github.com/shravanasati/relay/filters"
	"github.com/shravanasati/relay/middleware"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
)

type user struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type newUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userStore struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]user
}

func newUserStore() *userStore {
	return &userStore{nextID: 1, users: make(map[int]user)}
}

func (s *userStore) add(nu newUser) user {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user{ID: s.nextID, Name: nu.Name, Email: nu.Email}
	s.users[u.ID] = u
	s.nextID++
	return u
}

func (s *userStore) get(id int) (user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *userStore) remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[id]
	delete(s.users, id)
	return ok
}

func (s *userStore) list() []user {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]user, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b user) int { return a.ID - b.ID })
	return out
}

// userID parses the :id capture, failing with 400 for a non-number.
func userID() filters.Extractor[int] {
	return combinator.AndThen(filters.Param("id"), func(_ context.Context, v extract.One[string]) (int, error) {
		id, err := strconv.Atoi(v.V0)
		if err != nil || id <= 0 {
			return 0, router.Errorf(response.StatusBadRequest, "invalid user id %q", v.V0)
		}
		return id, nil
	})
}

func userNotFound(id int) error {
	return router.Errorf(response.StatusNotFound, "user %d not found", id)
}

// userRoutes serves the user API. Deleting needs one of accounts.
func userRoutes(store *userStore, accounts []middleware.Account) *router.Router {
	users := router.NewRouter(nil)

	users.Get("/", router.HandlerFunc(func(_ *request.Request) response.Response {
		return router.JSON(store.list())
	}))

	users.Get("/:id", combinator.Handle(userID(), func(_ context.Context, v extract.One[int]) (response.Response, error) {
		u, ok := store.get(v.V0)
		if !ok {
			return nil, userNotFound(v.V0)
		}
		return router.JSON(u), nil
	}))

	create := combinator.Guard(filters.ContentLengthLimit(64<<10), filters.JSON[newUser]())
	users.Post("/", combinator.Handle(create, func(_ context.Context, v extract.One[newUser]) (response.Response, error) {
		if strings.TrimSpace(v.V0.Name) == "" {
			return nil, router.Errorf(response.StatusBadRequest, "name is required")
		}
		u := store.add(v.V0)
		return router.JSON(u).
			WithStatusCode(response.StatusCreated).
			WithHeader("location", fmt.Sprintf("/api/users/%d", u.ID)), nil
	}))

	if len(accounts) == 0 {
		return users
	}

	admin := router.NewRouter(nil)
	remove := combinator.And2(userID(), filters.Ext[middleware.AuthUser]())
	admin.Delete("/:id", combinator.Handle(remove, func(_ context.Context, v extract.Two[int, middleware.AuthUser]) (response.Response, error) {
		if !store.remove(v.V0) {
			return nil, userNotFound(v.V0)
		}
		return response.NewEmptyResponse(response.StatusNoContent).
			WithHeader("x-deleted-by", string(v.V1)), nil
	}))
	admin = admin.Wrap(middleware.BasicAuth(accounts))

	users.Extend(admin)
	return users
}

const greetingTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
</head>
<body>
    <h1>Hello, {{.Name}}!</h1>
    <p><strong>Timestamp:</strong> {{.Timestamp}}</p>
    <p><strong>Request Path:</strong> {{.Path}}</p>
    {{if .QueryParams}}
    <h3>Query Parameters:</h3>
    <ul>
    {{range $key, $value := .QueryParams}}
        <li>{{$key}}: {{$value}}</li>
    {{end}}
    </ul>
    {{end}}
</body>
</html>`

const visitsPage = `<!DOCTYPE html>
<html>
<head>
    <title>Visits</title>
</head>
<body>
    <p>Visit number %d from this browser.</p>
</body>
</html>`

// visitRoutes counts the visits of each client in its session. GET answers
// in HTML or JSON, whichever the client prefers; DELETE forgets the client.
func visitRoutes(sessions middleware.SessionOptions) *router.Router {
	visits := router.NewRouter(nil)

	count := combinator.And2(filters.Accept("text/html", "application/json"), filters.Ext[*middleware.Session]())
	visits.Get("/visits", combinator.Handle(count, func(_ context.Context, v extract.Two[string, *middleware.Session]) (response.Response, error) {
		seen, _ := v.V1.Get("visits")
		n, _ := strconv.Atoi(seen)
		n++
		v.V1.Set("visits", strconv.Itoa(n))

		if v.V0 == "application/json" {
			return router.JSON(map[string]int{"visits": n}), nil
		}
		return response.NewHTMLResponse(fmt.Sprintf(visitsPage, n)), nil
	}))

	visits.Delete("/visits", combinator.Handle(filters.Ext[*middleware.Session](), func(_ context.Context, v extract.One[*middleware.Session]) (response.Response, error) {
		v.V0.Destroy()
		return response.NewEmptyResponse(response.StatusNoContent), nil
	}))

	return visits.Wrap(middleware.Sessions(sessions)).Wrap(middleware.Cookies())
}

// newApp builds every route of the demo server. The static files are
// mounted under staticPrefix.
func newApp(store *userStore, static middleware.NamedReadSeekerFS, staticPrefix string, accounts []middleware.Account, sessions middleware.SessionOptions) (*router.Router, error) {
	app := router.NewRouter(&router.Options{MethodNotAllowed: true})

	app.Get("/", router.HandlerFunc(func(_ *request.Request) response.Response {
		return response.NewRedirectResponseWithCode(staticPrefix+"/", response.StatusFound)
	}))

	if err := router.Handle(app, "GET", "/hello/:name", combinator.UnpackOne(filters.Param("name")), func(name string) response.Response {
		return router.Text("hello " + name + "\n")
	}); err != nil {
		return nil, err
	}

	app.Post("/echo", combinator.Handle(
		combinator.And2(filters.Header("content-type"), filters.Bytes()),
		func(_ context.Context, v extract.Two[string, []byte]) (response.Response, error) {
			return response.NewBaseResponse().
				WithHeader("content-type", v.V0).
				WithHeader("content-length", strconv.Itoa(len(v.V1))).
				WithBody(strings.NewReader(string(v.V1))), nil
		},
	))

	greet := combinator.And3(filters.Param("name"), filters.QueryValues(), filters.RealPath())
	app.Get("/template/:name", combinator.Handle(greet, func(_ context.Context, v extract.Three[string, url.Values, string]) (response.Response, error) {
		query := make(map[string]string)
		for key, values := range v.V1 {
			if len(values) > 0 {
				query[key] = values[0]
			}
		}
		resp, err := response.NewTemplateResponse(greetingTemplate, map[string]any{
			"Title":       "Welcome " + v.V0,
			"Name":        v.V0,
			"Timestamp":   time.Now().Format("2006-01-02 15:04:05 MST"),
			"Path":        v.V2,
			"QueryParams": query,
		})
		if err != nil {
			return nil, router.Internal(err)
		}
		return resp, nil
	}))

	ticks := combinator.AndThen(filters.Param("n"), func(_ context.Context, v extract.One[string]) (int, error) {
		n, err := strconv.Atoi(v.V0)
		if err != nil || n < 0 || n > 100 {
			return 0, router.Errorf(response.StatusBadRequest, "tick count must be between 0 and 100")
		}
		return n, nil
	})
	app.Get("/stream/:n", combinator.Handle(ticks, func(_ context.Context, v extract.One[int]) (response.Response, error) {
		n := v.V0
		sr := response.NewStreamResponse(func(w io.Writer) error {
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for i := range n {
				t := <-ticker.C
				if _, err := fmt.Fprintf(w, "%d %s\n", i, t.Format(time.RFC3339Nano)); err != nil {
					return err
				}
			}
			return nil
		})
		sr.WithHeader("content-type", "text/plain; charset=utf-8")
		return sr, nil
	}))

	app.Get("/sleep", combinator.Handle(filters.Query("ms"), func(ctx context.Context, v extract.One[string]) (response.Response, error) {
		ms, err := strconv.Atoi(v.V0)
		if err != nil || ms < 0 {
			return nil, router.Errorf(response.StatusBadRequest, "ms must be a non-negative integer")
		}
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
			return router.Text("slept\n"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}))

	app.Get("/redirect", router.HandlerFunc(func(_ *request.Request) response.Response {
		return response.NewRedirectResponse("https://go.dev")
	}))

	app.Any("/panic", router.HandlerFunc(func(_ *request.Request) response.Response {
		panic("boom")
	}))

	app.Extend(visitRoutes(sessions))

	if err := app.Mount("/api/users", userRoutes(store, accounts)); err != nil {
		return nil, err
	}

	if err := app.MountService(staticPrefix, middleware.NewStaticHandler("", static)); err != nil {
		return nil, err
	}
	return app, nil
}
