package middleware

import (
	"context"
	"crypto/rand"
	"errors"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/router"
)

// ErrNoJar fails requests that reach Sessions without a Cookies middleware
// in front of it.
var ErrNoJar = errors.New("sessions need the cookies middleware")

// SessionStore keeps session values by session id.
type SessionStore interface {
	// Load returns the values of a live session. ok is false for an
	// unknown or expired id.
	Load(ctx context.Context, id string) (values map[string]string, ok bool, err error)
	Save(ctx context.Context, id string, values map[string]string) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a SessionStore in process memory. Sessions unused for
// longer than the idle TTL are forgotten.
type MemoryStore struct {
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*storedSession
	saves    uint64
}

type storedSession struct {
	values   map[string]string
	lastSeen time.Time
}

// NewMemoryStore creates a store. An idleTTL of zero or less keeps sessions
// until they are deleted.
func NewMemoryStore(idleTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*storedSession),
	}
}

func (s *MemoryStore) expired(e *storedSession, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(e.lastSeen) > s.idleTTL
}

func (s *MemoryStore) Load(_ context.Context, id string) (map[string]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false, nil
	}
	if s.expired(e, now) {
		delete(s.sessions, id)
		return nil, false, nil
	}
	e.lastSeen = now
	return maps.Clone(e.values), true, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sessions[id] = &storedSession{values: maps.Clone(values), lastSeen: now}

	s.saves++
	if s.saves%256 == 0 {
		for k, e := range s.sessions {
			if s.expired(e, now) {
				delete(s.sessions, k)
			}
		}
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len is the number of sessions held, expired ones included until evicted.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Session is the state Sessions attaches to a request. It is safe for
// concurrent use.
type Session struct {
	mu        sync.Mutex
	id        string
	fresh     bool
	values    map[string]string
	changed   bool
	destroyed bool
}

// ID is the session id, also the value of the session cookie.
func (s *Session) ID() string { return s.id }

// IsNew reports whether the session was created for this request.
func (s *Session) IsNew() bool { return s.fresh }

func (s *Session) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.changed = true
}

func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.changed = true
	}
}

// Destroy drops the session from the store and its cookie from the client
// once the request is answered.
func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
}

// SessionFrom returns the session Sessions attached to the request.
func SessionFrom(r *request.Request) (*Session, bool) {
	return request.Get[*Session](r.Extensions())
}

// SessionOptions configures Sessions.
type SessionOptions struct {
	Store SessionStore
	// CookieName defaults to "relay_session".
	CookieName string
	// MaxAge of the cookie. Zero makes it a browser session cookie.
	MaxAge time.Duration
	Secure bool
}

// Sessions attaches a Session to every request, loaded from the store by
// the id in the session cookie or created empty. It must sit inside a
// Cookies middleware. When the wrapped service replies, a changed session
// is saved and a new one gets its cookie set; a destroyed one is deleted
// and its cookie removed. Nothing is saved for a failure or a decline.
func Sessions(opts SessionOptions) router.Middleware {
	if opts.Store == nil {
		opts.Store = NewMemoryStore(30 * time.Minute)
	}
	if opts.CookieName == "" {
		opts.CookieName = "relay_session"
	}

	return func(next router.Handler) router.Handler {
		return handler(func(ctx context.Context, r *request.Request) outcome {
			jar, ok := JarFrom(r)
			if !ok {
				return failure(router.Internal(ErrNoJar))
			}

			sess, err := loadSession(ctx, opts.Store, jar, opts.CookieName)
			if err != nil {
				return failure(router.Internal(err))
			}

			ext := r.Extensions()
			prev, hadPrev := request.Get[*Session](ext)
			request.Set(ext, sess)

			out := next.Call(ctx, r)
			if in, ok := out.Input(); ok {
				if hadPrev {
					request.Set(in.Extensions(), prev)
				} else {
					request.Remove[*Session](in.Extensions())
				}
				return out
			}
			if !out.IsSuccess() {
				return out
			}

			if err := finishSession(ctx, opts, jar, sess); err != nil {
				return failure(router.Internal(err))
			}
			return out
		})
	}
}

func loadSession(ctx context.Context, store SessionStore, jar *Jar, name string) (*Session, error) {
	if c, ok := jar.Get(name); ok && c.Value != "" {
		values, found, err := store.Load(ctx, c.Value)
		if err != nil {
			return nil, err
		}
		if found {
			if values == nil {
				values = make(map[string]string)
			}
			return &Session{id: c.Value, values: values}, nil
		}
	}
	return &Session{id: rand.Text(), fresh: true, values: make(map[string]string)}, nil
}

func finishSession(ctx context.Context, opts SessionOptions, jar *Jar, sess *Session) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.destroyed {
		if sess.fresh {
			return nil
		}
		jar.Remove(opts.CookieName)
		return opts.Store.Delete(ctx, sess.id)
	}
	if sess.fresh && !sess.changed {
		// nothing worth a cookie yet
		return nil
	}
	if err := opts.Store.Save(ctx, sess.id, sess.values); err != nil {
		return err
	}
	if sess.fresh || opts.MaxAge > 0 {
		jar.Add(&http.Cookie{
			Name:     opts.CookieName,
			Value:    sess.id,
			Path:     "/",
			MaxAge:   int(opts.MaxAge.Seconds()),
			Secure:   opts.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return nil
}
