package httpx

import (
	"context"
	"net/http"

	"github.com/aretw0/arbor"
)

type contextKey struct{}

// WithContext stores the evaluation context on the request context.
func WithContext(ctx context.Context, c *arbor.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext retrieves the evaluation context installed by the
// middleware. The second return is false outside a wrapped handler.
func FromContext(ctx context.Context) (*arbor.Context, bool) {
	c, ok := ctx.Value(contextKey{}).(*arbor.Context)
	return c, ok
}

// FromRequest is FromContext over the request's context.
func FromRequest(r *http.Request) (*arbor.Context, bool) {
	return FromContext(r.Context())
}
