package el

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/expr-lang/expr"
)

// Observer receives notifications about expression activity. Implementations
// must be safe for concurrent use. The zero Factory uses a no-op observer.
type Observer interface {
	ExpressionCompiled(kind string, err error)
	ExpressionEvaluated(kind string, elapsed time.Duration, err error)
}

const (
	kindValue  = "value"
	kindMethod = "method"
)

// Factory parses string expressions into evaluatable expression objects.
// A single Factory is shared by every request of an application.
type Factory struct {
	observer Observer
}

// Option configures the Factory.
type Option func(*Factory)

// WithObserver wires expression metrics into the factory.
func WithObserver(o Observer) Option {
	return func(f *Factory) {
		f.observer = o
	}
}

// NewFactory creates an expression factory.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ValueExpression parses src into a read/write-evaluatable expression.
// When expected is not reflect.Invalid, evaluation results are coerced to
// that kind by the underlying evaluator; coercion failures surface as
// evaluation errors, exactly as the evaluator raises them.
func (f *Factory) ValueExpression(src string, expected reflect.Kind) (*ValueExpression, error) {
	opts := []expr.Option{expr.AllowUndefinedVariables()}
	if expected != reflect.Invalid {
		opts = append(opts, expr.AsKind(expected))
	}

	program, err := expr.Compile(src, opts...)
	f.compiled(kindValue, err)
	if err != nil {
		return nil, fmt.Errorf("parse value expression %q: %w", src, err)
	}

	return &ValueExpression{
		src:      src,
		program:  program,
		path:     parsePath(src),
		expected: expected,
		factory:  f,
	}, nil
}

// MethodExpression parses src into an invocable method reference.
//
// The expected return type constrains the resolved method: nil disables
// the check, Void requires a method with no result. A nil params slice
// disables parameter checking; an empty one requires a niladic method.
//
// If src is not a method reference it is treated as a literal whose
// invocation returns the literal coerced to ret. A void literal is an
// error, as is a literal that cannot coerce.
func (f *Factory) MethodExpression(src string, ret reflect.Type, params []reflect.Type) (*MethodExpression, error) {
	me, err := parseMethodExpression(src, ret, params, f)
	f.compiled(kindMethod, err)
	if err != nil {
		return nil, err
	}
	return me, nil
}

func (f *Factory) compiled(kind string, err error) {
	if f.observer != nil {
		f.observer.ExpressionCompiled(kind, err)
	}
}

func (f *Factory) evaluated(kind string, start time.Time, err error) {
	if f.observer != nil {
		f.observer.ExpressionEvaluated(kind, time.Since(start), err)
	}
}

// parsePath splits src into a dotted identifier path, or returns nil when
// src is not a plain l-value (and therefore not writable).
func parsePath(src string) []string {
	segments := strings.Split(strings.TrimSpace(src), ".")
	for _, seg := range segments {
		if !isIdentifier(seg) {
			return nil
		}
	}
	return segments
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
