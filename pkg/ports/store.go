package ports

import "context"

// AttributeStore is the storage behind a single attribute scope.
// Implementations must be safe for concurrent use.
type AttributeStore interface {
	// Get returns the value bound to name, and whether it was bound at all.
	Get(ctx context.Context, name string) (any, bool, error)

	// Set binds a value to name, replacing any previous binding.
	Set(ctx context.Context, name string, value any) error

	// Delete removes the binding for name. Removing an unbound name is a no-op.
	Delete(ctx context.Context, name string) error

	// Names lists the currently bound names in no particular order.
	Names(ctx context.Context) ([]string, error)
}

// ScopeProvider hands out the attribute store backing a keyed scope
// instance (a session ID, a view ID). Providers return the same store
// for the same key until the key is dropped.
type ScopeProvider interface {
	Scope(key string) AttributeStore

	// Drop discards the scope instance for key, if any.
	Drop(ctx context.Context, key string) error
}
