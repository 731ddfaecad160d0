package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/ports"
)

const defaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serialises access to conversations and hands out Scopes.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL bounds how long a distributed lock survives a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager on top of the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: defaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu and call release after unlocking.
func (m *Manager) acquire(conversationID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[conversationID]
	if !exists {
		entry = &lockEntry{}
		m.locks[conversationID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[conversationID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, conversationID)
	}
}

// Scope binds the store to one conversation. It performs no locking itself.
func (m *Manager) Scope(conversationID string) *Scope {
	return NewScope(m.store, conversationID)
}

// WithLock runs fn with exclusive access to the conversation.
func (m *Manager) WithLock(ctx context.Context, conversationID string, fn func(context.Context, *Scope) error) error {
	entry := m.acquire(conversationID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(conversationID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, conversationID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"conversation_id", conversationID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx, m.Scope(conversationID))
}

// Reset drops every key of the conversation.
func (m *Manager) Reset(ctx context.Context, conversationID string) error {
	return m.WithLock(ctx, conversationID, func(ctx context.Context, s *Scope) error {
		return s.Clear(ctx)
	})
}

// List returns known conversations when the store can enumerate them.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	lister, ok := m.store.(ports.SessionLister)
	if !ok {
		return nil, fmt.Errorf("session store %T cannot list conversations", m.store)
	}
	return lister.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}
