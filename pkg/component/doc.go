// Package component provides Arbor's programmatic UI command components:
// interactive elements built at runtime, labelled with a static value and
// armed with a method expression that fires when the component is
// activated. A registry maps component type constants to constructors so
// hosts can install their own component kinds next to the built-ins.
package component
