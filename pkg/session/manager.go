package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// DefaultCookie is the cookie name carrying the session ID.
const DefaultCookie = "ARBORSESSID"

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	provider ports.ScopeProvider
	cookie   string

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		m.cookie = name
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager over the given scope provider.
func NewManager(provider ports.ScopeProvider, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		cookie:   DefaultCookie,
		locks:    make(map[string]*lockEntry),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	return fn(ctx)
}

// Scope returns the attribute store bound to sessionID.
func (m *Manager) Scope(sessionID string) ports.AttributeStore {
	return m.provider.Scope(sessionID)
}

// Invalidate drops the session's attributes and expires its cookie.
func (m *Manager) Invalidate(ctx context.Context, w http.ResponseWriter, sessionID string) error {
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.provider.Drop(ctx, sessionID)
	})
	if err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return nil
}

// ID returns the session ID carried by the request cookie, or
// ErrSessionNotFound when the request has no session yet.
func (m *Manager) ID(r *http.Request) (string, error) {
	c, err := r.Cookie(m.cookie)
	if err != nil || c.Value == "" {
		return "", domain.ErrSessionNotFound
	}
	return c.Value, nil
}

// EnsureID returns the request's session ID, minting and setting a cookie
// when the request carries none.
func (m *Manager) EnsureID(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, err := m.ID(r); err == nil {
		return id, nil
	}

	id, err := newID()
	if err != nil {
		return "", fmt.Errorf("mint session id: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	m.logger.Debug("session started", "session_id", id)
	return id, nil
}

func newID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
