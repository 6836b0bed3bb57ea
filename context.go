package arbor

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/el"
	"github.com/aretw0/arbor/pkg/ports"
)

// Context is the per-request evaluation context: the five attribute scopes
// plus the inbound request. It is bound to one in-flight request and must
// not be shared across requests.
type Context struct {
	app     *App
	request *http.Request
	scopes  map[domain.Scope]ports.AttributeStore
	logger  *slog.Logger
}

// ContextOption configures a Context at creation.
type ContextOption func(*Context)

// WithRequest attaches the inbound HTTP request.
func WithRequest(r *http.Request) ContextOption {
	return func(c *Context) {
		c.request = r
	}
}

// WithSessionScope binds the session scope store.
func WithSessionScope(store ports.AttributeStore) ContextOption {
	return func(c *Context) {
		c.scopes[domain.ScopeSession] = store
	}
}

// WithViewScope binds the view scope store.
func WithViewScope(store ports.AttributeStore) ContextOption {
	return func(c *Context) {
		c.scopes[domain.ScopeView] = store
	}
}

// WithRequestScope binds the request scope store.
func WithRequestScope(store ports.AttributeStore) ContextOption {
	return func(c *Context) {
		c.scopes[domain.ScopeRequest] = store
	}
}

// WithFlashScope binds the flash scope store.
func WithFlashScope(store ports.AttributeStore) ContextOption {
	return func(c *Context) {
		c.scopes[domain.ScopeFlash] = store
	}
}

// NewContext creates the evaluation context for one request. Scopes not
// bound by options default to fresh in-memory stores, except application
// scope, which is always the app's shared store.
func (a *App) NewContext(opts ...ContextOption) *Context {
	c := &Context{
		app:    a,
		scopes: make(map[domain.Scope]ports.AttributeStore, 5),
		logger: a.logger,
	}
	c.scopes[domain.ScopeApplication] = a.application

	for _, opt := range opts {
		opt(c)
	}

	for _, scope := range domain.SearchOrder() {
		if _, ok := c.scopes[scope]; !ok {
			c.scopes[scope] = memory.NewStore()
		}
	}
	return c
}

// App returns the application this context belongs to.
func (c *Context) App() *App {
	return c.app
}

// Request returns the inbound HTTP request, or nil outside a request.
func (c *Context) Request() *http.Request {
	return c.request
}

// Scope returns the store behind the named scope.
func (c *Context) Scope(scope domain.Scope) ports.AttributeStore {
	return c.scopes[scope]
}

// Logger returns the request logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Resolution builds the expression evaluation context over the scope
// chain, in the fixed search order.
func (c *Context) Resolution() *el.Resolution {
	ctx := context.Background()
	if c.request != nil {
		ctx = c.request.Context()
	}

	order := domain.SearchOrder()
	bindings := make([]el.Binding, 0, len(order))
	for _, scope := range order {
		bindings = append(bindings, el.Binding{Scope: scope, Store: c.scopes[scope]})
	}
	return el.NewResolution(ctx, bindings...)
}
