package component

import (
	"fmt"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Component type constants for the built-in command components.
const (
	TypeCommandButton = "arbor.CommandButton"
	TypeCommandLink   = "arbor.CommandLink"
)

// Factory constructs a fresh, unconfigured component instance.
type Factory func() Component

// Registry manages the available component types.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in command components
// pre-registered.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
	}
	r.Register(TypeCommandButton, func() Component { return &CommandButton{} })
	r.Register(TypeCommandLink, func() Component { return &CommandLink{} })
	return r
}

// Register adds a component type to the registry.
// If the type already exists, it is overwritten.
func (r *Registry) Register(componentType string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[componentType] = fn
}

// Create instantiates a component by its registered type.
func (r *Registry) Create(componentType string) (Component, error) {
	r.mu.RLock()
	fn, ok := r.factories[componentType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("create %q: %w", componentType, domain.ErrUnknownComponent)
	}
	return fn(), nil
}
