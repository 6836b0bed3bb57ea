package memory

import (
	"context"
	"sync"

	"github.com/aretw0/arbor/pkg/ports"
)

// Store implements ports.AttributeStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]any
	mu   sync.RWMutex
}

// NewStore creates a new in-memory attribute store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]any),
	}
}

// Get returns the value bound to name.
func (s *Store) Get(ctx context.Context, name string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[name]
	return val, ok, nil
}

// Set binds a value to name.
func (s *Store) Set(ctx context.Context, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = value
	return nil
}

// Delete removes the binding for name.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// Names lists the currently bound names.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	return names, nil
}

// Provider hands out per-key stores, creating them on first use.
// It backs session and view scopes in single-process deployments.
type Provider struct {
	mu     sync.Mutex
	scopes map[string]*Store
}

// NewProvider creates an empty provider.
func NewProvider() *Provider {
	return &Provider{
		scopes: make(map[string]*Store),
	}
}

// Scope returns the store for key, creating it when absent.
func (p *Provider) Scope(key string) ports.AttributeStore {
	p.mu.Lock()
	defer p.mu.Unlock()

	store, ok := p.scopes[key]
	if !ok {
		store = NewStore()
		p.scopes[key] = store
	}
	return store
}

// Drop discards the store for key.
func (p *Provider) Drop(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.scopes, key)
	return nil
}
