package component

import (
	"fmt"
	"html"
	"io"

	"github.com/aretw0/arbor/pkg/el"
)

// Event carries the activation details handed to action listeners.
type Event struct {
	// Source is the ID of the component that fired.
	Source string
}

// ActionListener reacts to a component activation before the action
// expression runs.
type ActionListener func(res *el.Resolution, e Event) error

// Component is a renderable UI element.
type Component interface {
	Type() string
	Render(w io.Writer) error
}

// command is the shared behavior of the two command components.
type command struct {
	ID        string
	Value     string
	Action    *el.MethodExpression
	listeners []ActionListener
}

// ComponentID returns the component's ID, used to address it in
// postbacks.
func (c *command) ComponentID() string {
	return c.ID
}

// AddActionListener appends a listener fired before the action expression.
func (c *command) AddActionListener(l ActionListener) {
	c.listeners = append(c.listeners, l)
}

// Fire runs the listeners and then the action expression, returning the
// action's outcome string. Listener and action errors surface unchanged.
func (c *command) Fire(res *el.Resolution) (string, error) {
	e := Event{Source: c.ID}
	for _, l := range c.listeners {
		if err := l(res, e); err != nil {
			return "", err
		}
	}

	if c.Action == nil {
		return "", nil
	}
	out, err := c.Action.Invoke(res)
	if err != nil {
		return "", err
	}
	outcome, ok := out.(string)
	if !ok && out != nil {
		return "", fmt.Errorf("action %q returned %T, want string", c.Action.Source(), out)
	}
	return outcome, nil
}

// CommandButton is a submit button wired to an action expression.
type CommandButton struct {
	command
}

// Type returns the registered component type.
func (b *CommandButton) Type() string {
	return TypeCommandButton
}

// Render writes the button markup.
func (b *CommandButton) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, `<button type="submit" id=%q name="arbor.action" value=%q>%s</button>`,
		b.ID, b.ID, html.EscapeString(b.Value))
	return err
}

// CommandLink is an anchor wired to an action expression.
type CommandLink struct {
	command
}

// Type returns the registered component type.
func (l *CommandLink) Type() string {
	return TypeCommandLink
}

// Render writes the link markup.
func (l *CommandLink) Render(w io.Writer) error {
	_, err := fmt.Fprintf(w, `<a id=%q href="?arbor.action=%s">%s</a>`,
		l.ID, html.EscapeString(l.ID), html.EscapeString(l.Value))
	return err
}
