package arbor

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/el"
)

var stringType = reflect.TypeOf("")

// CreateValueExpression parses src into a read/write-evaluatable value
// expression. When expected is not reflect.Invalid, evaluation results are
// coerced to that kind. Parse and coercion errors come from the evaluator
// and propagate unchanged.
func CreateValueExpression(c *Context, src string, expected reflect.Kind) (*el.ValueExpression, error) {
	return c.app.factory.ValueExpression(src, expected)
}

// SetExpressionValue parses src and immediately writes value through it.
// Useful for binding computed values to names page code will read, e.g.
// SetExpressionValue(ctx, time.Now(), "currentDate").
func SetExpressionValue(c *Context, value any, src string) error {
	ve, err := c.app.factory.ValueExpression(src, reflect.Invalid)
	if err != nil {
		return err
	}
	return ve.Set(c.Resolution(), value)
}

// CreateMethodExpression parses src into an invocable method reference,
// constrained by the expected return type and parameter list. A nil ret
// disables the return check; el.Void requires a method with no result. A
// literal src yields an expression returning the literal coerced to ret.
func CreateMethodExpression(c *Context, src string, ret reflect.Type, params []reflect.Type) (*el.MethodExpression, error) {
	return c.app.factory.MethodExpression(src, ret, params)
}

// CreateActionExpression parses src into a method expression suitable for
// handling a component activation: no result, one component.Event
// parameter.
func CreateActionExpression(c *Context, src string) (*el.MethodExpression, error) {
	return CreateMethodExpression(c, src, el.Void, []reflect.Type{reflect.TypeOf(component.Event{})})
}

// CreateActionListenerExpression parses src into a method expression for a
// component activation.
//
// Deprecated: use CreateActionExpression.
func CreateActionListenerExpression(c *Context, src string) (*el.MethodExpression, error) {
	return CreateActionExpression(c, src)
}

// CreateActionListener wraps a method expression into an ActionListener.
// When the component fires, the listener invokes the method identified by
// src with the activation event.
func CreateActionListener(c *Context, src string, ret reflect.Type, params []reflect.Type) (component.ActionListener, error) {
	me, err := CreateMethodExpression(c, src, ret, params)
	if err != nil {
		return nil, err
	}
	return func(res *el.Resolution, e component.Event) error {
		_, err := me.Invoke(res, e)
		return err
	}, nil
}

// Bean returns the first binding for name across the scopes, following the
// fixed search order. The second return is false when name is unbound in
// every scope.
func Bean(c *Context, name string) (any, bool, error) {
	val, _, ok, err := c.Resolution().Lookup(name)
	return val, ok, err
}

// BeanAs returns the binding for name as T. It performs an unchecked
// cast: absence and a type mismatch both report false.
func BeanAs[T any](c *Context, name string) (T, bool) {
	var zero T
	val, ok, err := Bean(c, name)
	if err != nil || !ok {
		return zero, false
	}
	typed, ok := val.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// DecodeBean looks up name and decodes the value into out, coercing
// loosely-typed scope data (JSON maps from serializing stores) into the
// caller's struct.
func DecodeBean(c *Context, name string, out any) error {
	val, ok, err := Bean(c, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("decode bean %q: %w", name, domain.ErrBeanNotFound)
	}
	if err := mapstructure.Decode(val, out); err != nil {
		return fmt.Errorf("decode bean %q: %w", name, err)
	}
	return nil
}

// ResolveBean delegates the lookup to the expression evaluator itself,
// evaluating name as a value expression against the scopes.
func ResolveBean(c *Context, name string, expected reflect.Kind) (any, error) {
	ve, err := c.app.factory.ValueExpression(name, expected)
	if err != nil {
		return nil, err
	}
	return ve.Get(c.Resolution())
}

// RemoveBean clears the binding for name by writing an absent value
// through the resolution mechanism. Subsequent lookups report absence.
// Removing an unbound name is a no-op.
func RemoveBean(c *Context, name string) error {
	ve, err := c.app.factory.ValueExpression(name, reflect.Invalid)
	if err != nil {
		return err
	}
	return ve.Set(c.Resolution(), nil)
}

// NewCommandLink builds a command link with the given label whose action
// expression must return a string outcome and take no parameters.
func NewCommandLink(c *Context, action, value string) (*component.CommandLink, error) {
	raw, err := c.app.components.Create(component.TypeCommandLink)
	if err != nil {
		return nil, err
	}
	link, ok := raw.(*component.CommandLink)
	if !ok {
		return nil, fmt.Errorf("create command link: registry produced %T: %w", raw, domain.ErrUnknownComponent)
	}
	link.Value = value
	link.Action, err = CreateMethodExpression(c, action, stringType, []reflect.Type{})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// NewCommandButton builds a command button with the given label whose
// action expression must return a string outcome and take no parameters.
func NewCommandButton(c *Context, action, value string) (*component.CommandButton, error) {
	raw, err := c.app.components.Create(component.TypeCommandButton)
	if err != nil {
		return nil, err
	}
	btn, ok := raw.(*component.CommandButton)
	if !ok {
		return nil, fmt.Errorf("create command button: registry produced %T: %w", raw, domain.ErrUnknownComponent)
	}
	btn.Value = value
	btn.Action, err = CreateMethodExpression(c, action, stringType, []reflect.Type{})
	if err != nil {
		return nil, err
	}
	return btn, nil
}
