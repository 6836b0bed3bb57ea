package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
)

// ViewKeyFunc derives the view identity from the request. Two requests
// with the same key share the view scope.
type ViewKeyFunc func(r *http.Request) string

// Scopes is the middleware that assembles the per-request evaluation
// context: it ensures a session, serializes requests within a session,
// rotates the flash generation, and installs the context on the request.
type Scopes struct {
	app      *arbor.App
	sessions *session.Manager
	views    ports.ScopeProvider
	viewKey  ViewKeyFunc
}

// ScopesOption configures the middleware.
type ScopesOption func(*Scopes)

// WithViewProvider backs view scopes with the given provider instead of
// in-process memory.
func WithViewProvider(p ports.ScopeProvider) ScopesOption {
	return func(s *Scopes) {
		s.views = p
	}
}

// WithViewKey overrides how the view identity is derived. The default is
// the request path.
func WithViewKey(fn ViewKeyFunc) ScopesOption {
	return func(s *Scopes) {
		s.viewKey = fn
	}
}

// NewScopes builds the middleware over an app and a session manager.
func NewScopes(app *arbor.App, sessions *session.Manager, opts ...ScopesOption) *Scopes {
	s := &Scopes{
		app:      app,
		sessions: sessions,
		views:    memory.NewProvider(),
		viewKey:  func(r *http.Request) string { return r.URL.Path },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler wraps next with scope assembly. Chi-compatible:
// r.Use(scopes.Handler).
func (s *Scopes) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := s.sessions.EnsureID(w, r)
		if err != nil {
			s.app.Logger().Error("session setup failed", "error", err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}

		// Requests within one session run serialized, so page code can
		// mutate session beans without its own locking.
		err = s.sessions.WithLock(r.Context(), sid, func(ctx context.Context) error {
			sessionStore := s.sessions.Scope(sid)
			flash := newFlashStore(sessionStore)
			if err := flash.Promote(ctx); err != nil {
				return err
			}

			viewStore := s.views.Scope(sid + "|" + s.viewKey(r))

			c := s.app.NewContext(
				arbor.WithRequest(r),
				arbor.WithSessionScope(hideFlash(sessionStore)),
				arbor.WithViewScope(viewStore),
				arbor.WithFlashScope(flash),
			)

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), c)))
			return nil
		})
		if err != nil {
			s.app.Logger().Error("scope setup failed", "error", err)
			http.Error(w, "scope setup failed", http.StatusInternalServerError)
		}
	})
}

// hideFlash masks the flash generations from the session scope so flash
// bookkeeping keys never leak into session name listings.
func hideFlash(backing ports.AttributeStore) ports.AttributeStore {
	return &maskedStore{backing: backing, hidden: "flash:"}
}

type maskedStore struct {
	backing ports.AttributeStore
	hidden  string
}

func (m *maskedStore) Get(ctx context.Context, name string) (any, bool, error) {
	if strings.HasPrefix(name, m.hidden) {
		return nil, false, nil
	}
	return m.backing.Get(ctx, name)
}

func (m *maskedStore) Set(ctx context.Context, name string, value any) error {
	return m.backing.Set(ctx, name, value)
}

func (m *maskedStore) Delete(ctx context.Context, name string) error {
	return m.backing.Delete(ctx, name)
}

func (m *maskedStore) Names(ctx context.Context) ([]string, error) {
	all, err := m.backing.Names(ctx)
	if err != nil {
		return nil, err
	}
	names := all[:0:0]
	for _, name := range all {
		if !strings.HasPrefix(name, m.hidden) {
			names = append(names, name)
		}
	}
	return names, nil
}
