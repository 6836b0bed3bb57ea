package el

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aretw0/arbor/pkg/domain"
)

// ValueExpression is a parsed expression that can be evaluated for reading
// and, when it denotes a dotted l-value, for writing.
type ValueExpression struct {
	src      string
	program  *vm.Program
	path     []string // nil when src is not a settable l-value
	expected reflect.Kind
	factory  *Factory
}

// Source returns the original expression string.
func (v *ValueExpression) Source() string {
	return v.src
}

// Writable reports whether Set can target this expression.
func (v *ValueExpression) Writable() bool {
	return len(v.path) > 0
}

// Get evaluates the expression against the resolution's scope chain.
// Evaluation and coercion errors from the evaluator propagate unchanged.
func (v *ValueExpression) Get(res *Resolution) (any, error) {
	start := time.Now()
	out, err := v.get(res)
	v.factory.evaluated(kindValue, start, err)
	return out, err
}

func (v *ValueExpression) get(res *Resolution) (any, error) {
	// Plain dotted l-values read through the same property walker Set
	// writes through, so one expression resolves names identically in
	// both directions (`profile.name` reaches the exported Name field).
	if len(v.path) > 0 {
		return v.getPath(res)
	}

	env, err := res.Environment()
	if err != nil {
		return nil, err
	}
	out, err := expr.Run(v.program, env)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", v.src, err)
	}
	return out, nil
}

func (v *ValueExpression) getPath(res *Resolution) (any, error) {
	base, _, ok, err := res.Lookup(v.path[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	for _, seg := range v.path[1:] {
		base, err = property(base, seg)
		if err != nil {
			// Absent reads evaluate to nil, like an undefined name.
			if errors.Is(err, domain.ErrBeanNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("evaluate %q: %w", v.src, err)
		}
	}
	return coerceKind(base, v.expected, v.src)
}

var kindTypes = map[reflect.Kind]reflect.Type{
	reflect.String:  reflect.TypeOf(""),
	reflect.Bool:    reflect.TypeOf(false),
	reflect.Int:     reflect.TypeOf(int(0)),
	reflect.Int8:    reflect.TypeOf(int8(0)),
	reflect.Int16:   reflect.TypeOf(int16(0)),
	reflect.Int32:   reflect.TypeOf(int32(0)),
	reflect.Int64:   reflect.TypeOf(int64(0)),
	reflect.Uint:    reflect.TypeOf(uint(0)),
	reflect.Uint8:   reflect.TypeOf(uint8(0)),
	reflect.Uint16:  reflect.TypeOf(uint16(0)),
	reflect.Uint32:  reflect.TypeOf(uint32(0)),
	reflect.Uint64:  reflect.TypeOf(uint64(0)),
	reflect.Float32: reflect.TypeOf(float32(0)),
	reflect.Float64: reflect.TypeOf(float64(0)),
}

// coerceKind applies the expected-kind contract to a path read, matching
// what the evaluator enforces for computed expressions: numeric kinds
// convert between each other, everything else must already match.
func coerceKind(val any, kind reflect.Kind, src string) (any, error) {
	if kind == reflect.Invalid || val == nil {
		return val, nil
	}

	rv := reflect.ValueOf(val)
	if rv.Kind() == kind {
		return val, nil
	}

	target, known := kindTypes[kind]
	if !known {
		return val, nil
	}
	if numericKind(rv.Kind()) && numericKind(kind) {
		return rv.Convert(target).Interface(), nil
	}
	return nil, fmt.Errorf("evaluate %q: expected %s, got %T", src, kind, val)
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Set writes value through the expression. A root-level name is bound in
// the scope that already holds it (request scope when unbound everywhere);
// a nil value at root level clears the binding. Dotted paths mutate the
// named property of the resolved base object and write the base back to
// its owning scope.
func (v *ValueExpression) Set(res *Resolution, value any) error {
	if !v.Writable() {
		return fmt.Errorf("set %q: %w", v.src, domain.ErrNotWritable)
	}

	if len(v.path) == 1 {
		if value == nil {
			return res.Unbind(v.path[0])
		}
		return res.Bind(v.path[0], value)
	}

	root := v.path[0]
	base, scope, ok, err := res.Lookup(root)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("set %q: base %q: %w", v.src, root, domain.ErrBeanNotFound)
	}

	if err := setProperty(base, v.path[1:], value); err != nil {
		return fmt.Errorf("set %q: %w", v.src, err)
	}

	// Write the base back so serializing stores observe the mutation.
	for _, b := range res.Bindings() {
		if b.Scope == scope {
			return b.Store.Set(res.Context(), root, base)
		}
	}
	return nil
}

// setProperty walks path through maps and struct pointers and assigns
// value to the final segment.
func setProperty(base any, path []string, value any) error {
	target := base
	for i := 0; i < len(path)-1; i++ {
		next, err := property(target, path[i])
		if err != nil {
			return err
		}
		target = next
	}

	last := path[len(path)-1]
	switch t := target.(type) {
	case map[string]any:
		if value == nil {
			delete(t, last)
			return nil
		}
		t[last] = value
		return nil
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct {
		field := structField(rv.Elem(), last)
		if !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("property %q: %w", last, domain.ErrNotWritable)
		}
		if value == nil {
			field.SetZero()
			return nil
		}
		val := reflect.ValueOf(value)
		if !val.Type().AssignableTo(field.Type()) {
			if !val.Type().ConvertibleTo(field.Type()) {
				return fmt.Errorf("property %q: cannot assign %T: %w", last, value, domain.ErrNotWritable)
			}
			val = val.Convert(field.Type())
		}
		field.Set(val)
		return nil
	}

	return fmt.Errorf("property %q on %T: %w", last, target, domain.ErrNotWritable)
}

// property reads a named property from a map or (pointer to) struct.
func property(base any, name string) (any, error) {
	if m, ok := base.(map[string]any); ok {
		val, bound := m[name]
		if !bound {
			return nil, fmt.Errorf("property %q: %w", name, domain.ErrBeanNotFound)
		}
		return val, nil
	}

	rv := reflect.ValueOf(base)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		field := structField(rv, name)
		if field.IsValid() {
			return field.Interface(), nil
		}
	}
	return nil, fmt.Errorf("property %q on %T: %w", name, base, domain.ErrBeanNotFound)
}

// structField matches name exactly, then with the first letter upper-cased
// so that page-style `user.name` reaches the exported Name field.
func structField(rv reflect.Value, name string) reflect.Value {
	if f := rv.FieldByName(name); f.IsValid() {
		return f
	}
	return rv.FieldByName(exported(name))
}
