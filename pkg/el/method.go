package el

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/arbor/pkg/domain"
)

type void struct{}

// Void marks a method expression that must not produce a result.
// Passing nil as the expected return type disables the check instead.
var Void = reflect.TypeOf(void{})

// MethodExpression is a parsed, invocable method reference. The target
// bean is resolved through the scope chain at invocation time; the method
// itself is located and signature-checked by reflection.
type MethodExpression struct {
	src    string
	path   []string // bean path, method name last; nil for literal form
	ret    reflect.Type
	params []reflect.Type

	literal any // pre-coerced literal result

	factory *Factory
}

func parseMethodExpression(src string, ret reflect.Type, params []reflect.Type, f *Factory) (*MethodExpression, error) {
	me := &MethodExpression{
		src:     src,
		ret:     ret,
		params:  params,
		factory: f,
	}

	path := parsePath(src)
	if len(path) >= 2 {
		me.path = path
		return me, nil
	}

	// Literal form: the invocation result is the literal itself, coerced
	// to the expected return type up front so malformed literals fail at
	// parse time.
	if ret == Void {
		return nil, fmt.Errorf("parse method expression %q: literal with void return: %w", src, domain.ErrSignatureMismatch)
	}
	lit, err := coerceLiteral(src, ret)
	if err != nil {
		return nil, fmt.Errorf("parse method expression %q: %w", src, err)
	}
	me.literal = lit
	return me, nil
}

// Source returns the original expression string.
func (m *MethodExpression) Source() string {
	return m.src
}

// Literal reports whether the expression is a literal rather than a
// method reference.
func (m *MethodExpression) Literal() bool {
	return m.path == nil
}

// Invoke resolves the target bean, checks the method signature against the
// expected types, and calls it with args. For literal expressions it
// returns the coerced literal and ignores args.
func (m *MethodExpression) Invoke(res *Resolution, args ...any) (any, error) {
	start := time.Now()
	out, err := m.invoke(res, args)
	m.factory.evaluated(kindMethod, start, err)
	return out, err
}

func (m *MethodExpression) invoke(res *Resolution, args []any) (any, error) {
	if m.Literal() {
		return m.literal, nil
	}

	root := m.path[0]
	base, _, ok, err := res.Lookup(root)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("invoke %q: bean %q: %w", m.src, root, domain.ErrBeanNotFound)
	}

	// Walk intermediate properties, leaving the final segment as the
	// method name.
	for _, seg := range m.path[1 : len(m.path)-1] {
		base, err = property(base, seg)
		if err != nil {
			return nil, fmt.Errorf("invoke %q: %w", m.src, err)
		}
	}

	name := m.path[len(m.path)-1]
	method, err := findMethod(base, name)
	if err != nil {
		return nil, fmt.Errorf("invoke %q: %w", m.src, err)
	}
	if err := m.checkSignature(method.Type()); err != nil {
		return nil, fmt.Errorf("invoke %q: %w", m.src, err)
	}

	in, err := m.callArgs(method.Type(), args)
	if err != nil {
		return nil, fmt.Errorf("invoke %q: %w", m.src, err)
	}

	outs := method.Call(in)

	// Trailing error return propagates verbatim.
	if n := len(outs); n > 0 {
		if last := outs[n-1]; last.Type() == errType {
			if !last.IsNil() {
				return nil, last.Interface().(error)
			}
			outs = outs[:n-1]
		}
	}
	if len(outs) == 0 {
		return nil, nil
	}
	return outs[0].Interface(), nil
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// findMethod locates name on the bean, accepting both the exact spelling
// and the exported spelling so `greeter.greet` reaches Greet.
func findMethod(base any, name string) (reflect.Value, error) {
	rv := reflect.ValueOf(base)
	if m := rv.MethodByName(name); m.IsValid() {
		return m, nil
	}
	if m := rv.MethodByName(exported(name)); m.IsValid() {
		return m, nil
	}
	return reflect.Value{}, fmt.Errorf("method %q on %T: %w", name, base, domain.ErrSignatureMismatch)
}

func (m *MethodExpression) checkSignature(t reflect.Type) error {
	if m.params != nil {
		if t.NumIn() != len(m.params) {
			return fmt.Errorf("expected %d parameters, method takes %d: %w", len(m.params), t.NumIn(), domain.ErrSignatureMismatch)
		}
		for i, p := range m.params {
			if !p.AssignableTo(t.In(i)) {
				return fmt.Errorf("parameter %d: expected %s, method takes %s: %w", i, p, t.In(i), domain.ErrSignatureMismatch)
			}
		}
	}

	results := t.NumOut()
	if results > 0 && t.Out(results-1) == errType {
		results--
	}

	switch {
	case m.ret == nil:
		return nil
	case m.ret == Void:
		if results != 0 {
			return fmt.Errorf("expected no result, method returns %d: %w", results, domain.ErrSignatureMismatch)
		}
	default:
		if results == 0 {
			return fmt.Errorf("expected %s result, method returns none: %w", m.ret, domain.ErrSignatureMismatch)
		}
		if !t.Out(0).AssignableTo(m.ret) {
			return fmt.Errorf("expected %s result, method returns %s: %w", m.ret, t.Out(0), domain.ErrSignatureMismatch)
		}
	}
	return nil
}

func (m *MethodExpression) callArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	if len(args) != t.NumIn() {
		return nil, fmt.Errorf("got %d arguments, method takes %d: %w", len(args), t.NumIn(), domain.ErrSignatureMismatch)
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(t.In(i))
			continue
		}
		val := reflect.ValueOf(arg)
		if !val.Type().AssignableTo(t.In(i)) {
			if !val.Type().ConvertibleTo(t.In(i)) {
				return nil, fmt.Errorf("argument %d: cannot use %T as %s: %w", i, arg, t.In(i), domain.ErrSignatureMismatch)
			}
			val = val.Convert(t.In(i))
		}
		in[i] = val
	}
	return in, nil
}

// coerceLiteral converts a literal source string to the expected return
// type. A nil type keeps the string as-is.
func coerceLiteral(src string, ret reflect.Type) (any, error) {
	if ret == nil || ret.Kind() == reflect.String {
		if ret != nil && ret != reflect.TypeOf("") {
			return reflect.ValueOf(src).Convert(ret).Interface(), nil
		}
		return src, nil
	}

	trimmed := strings.TrimSpace(src)
	switch ret.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("coerce %q to %s: %w", src, ret, err)
		}
		return reflect.ValueOf(n).Convert(ret).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("coerce %q to %s: %w", src, ret, err)
		}
		return reflect.ValueOf(n).Convert(ret).Interface(), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("coerce %q to %s: %w", src, ret, err)
		}
		return reflect.ValueOf(f).Convert(ret).Interface(), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(trimmed)
		if err != nil {
			return nil, fmt.Errorf("coerce %q to %s: %w", src, ret, err)
		}
		return b, nil
	case reflect.Interface:
		return src, nil
	}
	return nil, fmt.Errorf("coerce %q to %s: %w", src, ret, domain.ErrSignatureMismatch)
}

// exported upper-cases the first rune of name.
func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
