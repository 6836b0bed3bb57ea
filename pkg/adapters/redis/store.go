package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/arbor/pkg/ports"
)

// Store implements ports.AttributeStore on a single Redis hash, one field
// per attribute, values JSON-encoded. Each keyed scope instance (session,
// view) gets its own hash.
type Store struct {
	client *backend.Client
	key    string
	ttl    time.Duration
}

type Option func(*config)

type config struct {
	prefix string
	ttl    time.Duration
}

// WithTTL sets the expiration refreshed on every write.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for scope hashes.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}

// New creates a Redis-backed store for one scope instance.
func New(address, password string, db int, scopeKey string, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return newStore(client, scopeKey, opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, scopeKey string, opts ...Option) *Store {
	return newStore(client, scopeKey, opts...)
}

func newStore(client *backend.Client, scopeKey string, opts ...Option) *Store {
	cfg := config{
		prefix: "arbor:scope:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		client: client,
		key:    cfg.prefix + scopeKey,
		ttl:    cfg.ttl,
	}
}

// Get returns the value bound to name.
func (s *Store) Get(ctx context.Context, name string) (any, bool, error) {
	raw, err := s.client.HGet(ctx, s.key, name).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get from redis: %w", err)
	}

	var val any
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal attribute: %w", err)
	}
	return val, true, nil
}

// Set binds a value to name and refreshes the hash TTL.
func (s *Store) Set(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal attribute: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, s.key, name, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Delete removes the binding for name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.HDel(ctx, s.key, name).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Names lists the currently bound names.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	names, err := s.client.HKeys(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	return names, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Provider hands out Redis-backed stores, one hash per key.
type Provider struct {
	client *backend.Client
	opts   []Option
}

// NewProvider creates a provider over an existing client. The options are
// applied to every store it hands out.
func NewProvider(client *backend.Client, opts ...Option) *Provider {
	return &Provider{client: client, opts: opts}
}

// Scope returns the store for key.
func (p *Provider) Scope(key string) ports.AttributeStore {
	return NewFromClient(p.client, key, p.opts...)
}

// Drop removes the scope hash for key.
func (p *Provider) Drop(ctx context.Context, key string) error {
	cfg := config{prefix: "arbor:scope:"}
	for _, opt := range p.opts {
		opt(&cfg)
	}
	return p.client.Del(ctx, cfg.prefix+key).Err()
}
