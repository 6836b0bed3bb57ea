package domain

import "errors"

// ErrBeanNotFound is returned when a name is unbound in every scope.
var ErrBeanNotFound = errors.New("bean not found")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotWritable is returned when an expression does not denote a settable target.
var ErrNotWritable = errors.New("expression is not writable")

// ErrSignatureMismatch is returned when a resolved method does not match
// the expected return and parameter types.
var ErrSignatureMismatch = errors.New("method signature mismatch")

// ErrUnknownComponent is returned when a component type has no registered factory.
var ErrUnknownComponent = errors.New("unknown component type")
