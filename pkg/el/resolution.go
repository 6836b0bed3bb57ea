package el

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Binding pairs a scope with the store backing it for the current request.
type Binding struct {
	Scope domain.Scope
	Store ports.AttributeStore
}

// Resolution is the evaluation context for expressions: the ordered scope
// chain of one in-flight request. It is not shared across requests.
type Resolution struct {
	ctx      context.Context
	bindings []Binding
}

// NewResolution builds a resolution over the given bindings. Bindings must
// be ordered by lookup priority, highest first; arbor.Context does this
// using the fixed scope search order.
func NewResolution(ctx context.Context, bindings ...Binding) *Resolution {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Resolution{ctx: ctx, bindings: bindings}
}

// Context returns the request context store operations run under.
func (r *Resolution) Context() context.Context {
	return r.ctx
}

// Bindings returns the scope chain in lookup order.
func (r *Resolution) Bindings() []Binding {
	return r.bindings
}

// Lookup returns the first non-absent binding for name, following the
// chain's fixed priority order.
func (r *Resolution) Lookup(name string) (any, domain.Scope, bool, error) {
	for _, b := range r.bindings {
		val, ok, err := b.Store.Get(r.ctx, name)
		if err != nil {
			return nil, b.Scope, false, fmt.Errorf("scope %s: %w", b.Scope, err)
		}
		if ok {
			return val, b.Scope, true, nil
		}
	}
	return nil, "", false, nil
}

// Environment flattens the scope chain into a single evaluation
// environment. Lower-priority scopes are applied first so that a
// higher-priority binding shadows a lower one, mirroring Lookup.
func (r *Resolution) Environment() (map[string]any, error) {
	env := make(map[string]any)
	for i := len(r.bindings) - 1; i >= 0; i-- {
		b := r.bindings[i]
		names, err := b.Store.Names(r.ctx)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", b.Scope, err)
		}
		for _, name := range names {
			val, ok, err := b.Store.Get(r.ctx, name)
			if err != nil {
				return nil, fmt.Errorf("scope %s: %w", b.Scope, err)
			}
			if ok {
				env[name] = val
			}
		}
	}
	return env, nil
}

// Bind writes a root-level name. If the name is already bound somewhere in
// the chain it is rebound in that scope; otherwise it lands in the request
// scope, matching how page-authored assignments behave.
func (r *Resolution) Bind(name string, value any) error {
	for _, b := range r.bindings {
		_, ok, err := b.Store.Get(r.ctx, name)
		if err != nil {
			return fmt.Errorf("scope %s: %w", b.Scope, err)
		}
		if ok {
			return b.Store.Set(r.ctx, name, value)
		}
	}
	return r.bindInDefault(name, value)
}

// Unbind clears a root-level name by removing it from the first scope that
// holds it. Unbinding an absent name is a no-op.
func (r *Resolution) Unbind(name string) error {
	for _, b := range r.bindings {
		_, ok, err := b.Store.Get(r.ctx, name)
		if err != nil {
			return fmt.Errorf("scope %s: %w", b.Scope, err)
		}
		if ok {
			return b.Store.Delete(r.ctx, name)
		}
	}
	return nil
}

func (r *Resolution) bindInDefault(name string, value any) error {
	for _, b := range r.bindings {
		if b.Scope == domain.ScopeRequest {
			return b.Store.Set(r.ctx, name, value)
		}
	}
	if len(r.bindings) == 0 {
		return fmt.Errorf("bind %q: %w", name, domain.ErrNotWritable)
	}
	// No request scope in the chain (bare test contexts): lowest priority wins.
	last := r.bindings[len(r.bindings)-1]
	return last.Store.Set(r.ctx, name, value)
}
