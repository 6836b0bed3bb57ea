package el_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/el"
)

// newResolution builds a five-scope chain over memory stores, returning the
// resolution plus the stores keyed by scope for seeding.
func newResolution(t *testing.T) (*el.Resolution, map[domain.Scope]*memory.Store) {
	t.Helper()
	stores := make(map[domain.Scope]*memory.Store)
	bindings := make([]el.Binding, 0, 5)
	for _, scope := range domain.SearchOrder() {
		store := memory.NewStore()
		stores[scope] = store
		bindings = append(bindings, el.Binding{Scope: scope, Store: store})
	}
	return el.NewResolution(context.Background(), bindings...), stores
}

func seed(t *testing.T, store *memory.Store, name string, value any) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), name, value))
}

func TestValueExpression_Get(t *testing.T) {
	factory := el.NewFactory()
	res, stores := newResolution(t)

	seed(t, stores[domain.ScopeRequest], "user", map[string]any{"name": "Ada", "age": 36})
	seed(t, stores[domain.ScopeApplication], "rate", 1.2)

	t.Run("property access", func(t *testing.T) {
		ve, err := factory.ValueExpression("user.name", reflect.String)
		require.NoError(t, err)

		out, err := ve.Get(res)
		require.NoError(t, err)
		assert.Equal(t, "Ada", out)
	})

	t.Run("arithmetic with coercion", func(t *testing.T) {
		ve, err := factory.ValueExpression("user.age * rate", reflect.Float64)
		require.NoError(t, err)

		out, err := ve.Get(res)
		require.NoError(t, err)
		assert.InDelta(t, 43.2, out.(float64), 0.001)
	})

	t.Run("unbound name evaluates to nil", func(t *testing.T) {
		ve, err := factory.ValueExpression("missing", reflect.Invalid)
		require.NoError(t, err)

		out, err := ve.Get(res)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("path read honors the expected kind", func(t *testing.T) {
		seed(t, stores[domain.ScopeView], "count", 7)

		ve, err := factory.ValueExpression("count", reflect.Float64)
		require.NoError(t, err)

		out, err := ve.Get(res)
		require.NoError(t, err)
		assert.Equal(t, 7.0, out)

		ve, err = factory.ValueExpression("count", reflect.String)
		require.NoError(t, err)

		_, err = ve.Get(res)
		assert.Error(t, err)
	})

	t.Run("syntax error surfaces from the evaluator", func(t *testing.T) {
		_, err := factory.ValueExpression("user.", reflect.Invalid)
		assert.Error(t, err)
	})
}

func TestValueExpression_ScopePriority(t *testing.T) {
	factory := el.NewFactory()
	res, stores := newResolution(t)

	// The same name in every scope: application must win, both for Lookup
	// and for the flattened evaluation environment.
	seed(t, stores[domain.ScopeFlash], "who", "flash")
	seed(t, stores[domain.ScopeRequest], "who", "request")
	seed(t, stores[domain.ScopeView], "who", "view")
	seed(t, stores[domain.ScopeSession], "who", "session")
	seed(t, stores[domain.ScopeApplication], "who", "application")

	val, scope, ok, err := res.Lookup("who")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.ScopeApplication, scope)
	assert.Equal(t, "application", val)

	ve, err := factory.ValueExpression("who", reflect.String)
	require.NoError(t, err)
	out, err := ve.Get(res)
	require.NoError(t, err)
	assert.Equal(t, "application", out)
}

func TestValueExpression_Set(t *testing.T) {
	factory := el.NewFactory()

	t.Run("unbound root lands in request scope", func(t *testing.T) {
		res, stores := newResolution(t)
		ve, err := factory.ValueExpression("greeting", reflect.Invalid)
		require.NoError(t, err)

		require.NoError(t, ve.Set(res, "hello"))

		val, ok, err := stores[domain.ScopeRequest].Get(context.Background(), "greeting")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "hello", val)
	})

	t.Run("bound root rebinds in owning scope", func(t *testing.T) {
		res, stores := newResolution(t)
		seed(t, stores[domain.ScopeSession], "greeting", "old")

		ve, err := factory.ValueExpression("greeting", reflect.Invalid)
		require.NoError(t, err)
		require.NoError(t, ve.Set(res, "new"))

		val, _, err := stores[domain.ScopeSession].Get(context.Background(), "greeting")
		require.NoError(t, err)
		assert.Equal(t, "new", val)

		_, ok, err := stores[domain.ScopeRequest].Get(context.Background(), "greeting")
		require.NoError(t, err)
		assert.False(t, ok, "request scope must stay untouched")
	})

	t.Run("nil clears the binding", func(t *testing.T) {
		res, stores := newResolution(t)
		seed(t, stores[domain.ScopeView], "draft", "x")

		ve, err := factory.ValueExpression("draft", reflect.Invalid)
		require.NoError(t, err)
		require.NoError(t, ve.Set(res, nil))

		_, ok, err := stores[domain.ScopeView].Get(context.Background(), "draft")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("dotted path mutates map and writes base back", func(t *testing.T) {
		res, stores := newResolution(t)
		seed(t, stores[domain.ScopeSession], "user", map[string]any{"name": "Ada"})

		ve, err := factory.ValueExpression("user.name", reflect.Invalid)
		require.NoError(t, err)
		require.NoError(t, ve.Set(res, "Grace"))

		val, _, err := stores[domain.ScopeSession].Get(context.Background(), "user")
		require.NoError(t, err)
		assert.Equal(t, "Grace", val.(map[string]any)["name"])
	})

	t.Run("struct pointer field", func(t *testing.T) {
		type profile struct{ Name string }
		res, stores := newResolution(t)
		p := &profile{Name: "Ada"}
		seed(t, stores[domain.ScopeRequest], "profile", p)

		ve, err := factory.ValueExpression("profile.name", reflect.Invalid)
		require.NoError(t, err)
		require.NoError(t, ve.Set(res, "Grace"))
		assert.Equal(t, "Grace", p.Name)
	})

	t.Run("struct field round trip", func(t *testing.T) {
		// One expression object must resolve the field identically for
		// reading and writing: `profile.name` reaches the exported Name
		// field in both directions.
		type profile struct{ Name string }
		res, stores := newResolution(t)
		seed(t, stores[domain.ScopeSession], "profile", &profile{Name: "Ada"})

		ve, err := factory.ValueExpression("profile.name", reflect.String)
		require.NoError(t, err)

		out, err := ve.Get(res)
		require.NoError(t, err)
		assert.Equal(t, "Ada", out)

		require.NoError(t, ve.Set(res, "Grace"))

		out, err = ve.Get(res)
		require.NoError(t, err)
		assert.Equal(t, "Grace", out)
	})

	t.Run("non l-value is not writable", func(t *testing.T) {
		res, _ := newResolution(t)
		ve, err := factory.ValueExpression("1 + 2", reflect.Invalid)
		require.NoError(t, err)

		err = ve.Set(res, 3)
		assert.ErrorIs(t, err, domain.ErrNotWritable)
	})

	t.Run("dotted path with unbound base fails", func(t *testing.T) {
		res, _ := newResolution(t)
		ve, err := factory.ValueExpression("ghost.name", reflect.Invalid)
		require.NoError(t, err)

		err = ve.Set(res, "x")
		assert.ErrorIs(t, err, domain.ErrBeanNotFound)
	})
}

type greeter struct {
	Name string
}

func (g *greeter) Greet() string {
	return "Hello, " + g.Name
}

func (g *greeter) Rename(name string) {
	g.Name = name
}

func (g *greeter) Fails() (string, error) {
	return "", errors.New("boom")
}

func TestMethodExpression_Invoke(t *testing.T) {
	factory := el.NewFactory()
	stringType := reflect.TypeOf("")

	t.Run("niladic string method", func(t *testing.T) {
		res, stores := newResolution(t)
		seed(t, stores[domain.ScopeSession], "greeter", &greeter{Name: "Ada"})

		me, err := factory.MethodExpression("greeter.greet", stringType, []reflect.Type{})
		require.NoError(t, err)
		require.False(t, me.Literal())

		out, err := me.Invoke(res)
		require.NoError(t, err)
		assert.Equal(t, "Hello, Ada", out)
	})

	t.Run("void method with parameter", func(t *testing.T) {
		res, stores := newResolution(t)
		g := &greeter{Name: "Ada"}
		seed(t, stores[domain.ScopeRequest], "greeter", g)

		me, err := factory.MethodExpression("greeter.rename", el.Void, []reflect.Type{stringType})
		require.NoError(t, err)

		out, err := me.Invoke(res, "Grace")
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.Equal(t, "Grace", g.Name)
	})

	t.Run("trailing error return propagates", func(t *testing.T) {
		res, stores := newResolution(t)
		seed(t, stores[domain.ScopeRequest], "greeter", &greeter{})

		me, err := factory.MethodExpression("greeter.fails", stringType, []reflect.Type{})
		require.NoError(t, err)

		_, err = me.Invoke(res)
		assert.EqualError(t, err, "boom")
	})

	t.Run("return type mismatch", func(t *testing.T) {
		res, stores := newResolution(t)
		seed(t, stores[domain.ScopeRequest], "greeter", &greeter{})

		me, err := factory.MethodExpression("greeter.greet", reflect.TypeOf(0), []reflect.Type{})
		require.NoError(t, err)

		_, err = me.Invoke(res)
		assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
	})

	t.Run("parameter count mismatch", func(t *testing.T) {
		res, stores := newResolution(t)
		seed(t, stores[domain.ScopeRequest], "greeter", &greeter{})

		me, err := factory.MethodExpression("greeter.rename", el.Void, []reflect.Type{})
		require.NoError(t, err)

		_, err = me.Invoke(res)
		assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
	})

	t.Run("unbound bean", func(t *testing.T) {
		res, _ := newResolution(t)
		me, err := factory.MethodExpression("ghost.greet", stringType, []reflect.Type{})
		require.NoError(t, err)

		_, err = me.Invoke(res)
		assert.ErrorIs(t, err, domain.ErrBeanNotFound)
	})

	t.Run("nil return type disables the check", func(t *testing.T) {
		res, stores := newResolution(t)
		seed(t, stores[domain.ScopeRequest], "greeter", &greeter{Name: "Ada"})

		me, err := factory.MethodExpression("greeter.greet", nil, nil)
		require.NoError(t, err)

		out, err := me.Invoke(res)
		require.NoError(t, err)
		assert.Equal(t, "Hello, Ada", out)
	})
}

func TestMethodExpression_Literals(t *testing.T) {
	factory := el.NewFactory()
	res, _ := newResolution(t)

	t.Run("string literal", func(t *testing.T) {
		me, err := factory.MethodExpression("confirmed", reflect.TypeOf(""), nil)
		require.NoError(t, err)
		require.True(t, me.Literal())

		out, err := me.Invoke(res)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", out)
	})

	t.Run("numeric literal coerces at parse time", func(t *testing.T) {
		me, err := factory.MethodExpression("42", reflect.TypeOf(0), nil)
		require.NoError(t, err)

		out, err := me.Invoke(res)
		require.NoError(t, err)
		assert.Equal(t, 42, out)
	})

	t.Run("bad coercion fails at parse time", func(t *testing.T) {
		_, err := factory.MethodExpression("not-a-number", reflect.TypeOf(0), nil)
		assert.Error(t, err)
	})

	t.Run("void literal is rejected", func(t *testing.T) {
		_, err := factory.MethodExpression("oops", el.Void, nil)
		assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
	})
}
