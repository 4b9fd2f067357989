package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed holder can block a graph.
const DefaultLockTTL = 30 * time.Second

// Graph is the part of an engine a Manager checkpoints and resumes.
type Graph interface {
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
	Restore(ctx context.Context, snap *domain.Snapshot) error
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates snapshot access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and call release(graphID) after unlocking.
func (m *Manager) acquire(graphID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[graphID]
	if !exists {
		entry = &lockEntry{}
		m.locks[graphID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(graphID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[graphID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, graphID)
	}
}

// Load retrieves a stored snapshot.
func (m *Manager) Load(ctx context.Context, graphID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, graphID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, graphID)
		return err
	})
	return snap, err
}

// LoadOrCreate loads a snapshot, persisting an empty graph under graphID if
// none exists yet.
func (m *Manager) LoadOrCreate(ctx context.Context, graphID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, graphID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, graphID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrGraphNotFound) {
			return fmt.Errorf("failed to check graph existence: %w", err)
		}

		snap = &domain.Snapshot{Nodes: []domain.NodeRecord{}, Connections: []domain.Connection{}}
		if err := m.store.Save(ctx, graphID, snap); err != nil {
			return fmt.Errorf("failed to initialize graph: %w", err)
		}
		return nil
	})
	return snap, err
}

// Save persists a snapshot.
func (m *Manager) Save(ctx context.Context, graphID string, snap *domain.Snapshot) error {
	return m.WithLock(ctx, graphID, func(ctx context.Context) error {
		return m.store.Save(ctx, graphID, snap)
	})
}

// Delete removes a snapshot.
func (m *Manager) Delete(ctx context.Context, graphID string) error {
	return m.WithLock(ctx, graphID, func(ctx context.Context) error {
		return m.store.Delete(ctx, graphID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// Checkpoint snapshots g and saves it under graphID.
func (m *Manager) Checkpoint(ctx context.Context, graphID string, g Graph) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, graphID, func(ctx context.Context) error {
		var err error
		snap, err = g.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to snapshot graph: %w", err)
		}
		return m.store.Save(ctx, graphID, snap)
	})
	if err == nil {
		m.logger.Debug("graph checkpointed", "graph_id", graphID, "nodes", len(snap.Nodes))
	}
	return snap, err
}

// Resume loads the snapshot stored under graphID and restores it into g.
func (m *Manager) Resume(ctx context.Context, graphID string, g Graph) error {
	snap, err := m.Load(ctx, graphID)
	if err != nil {
		return err
	}
	if err := g.Restore(ctx, snap); err != nil {
		return fmt.Errorf("failed to restore graph %q: %w", graphID, err)
	}
	m.logger.Debug("graph resumed", "graph_id", graphID, "nodes", len(snap.Nodes))
	return nil
}

// WithLock executes fn while holding the lock for graphID.
func (m *Manager) WithLock(ctx context.Context, graphID string, fn func(context.Context) error) error {
	entry := m.acquire(graphID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(graphID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, graphID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"graph_id", graphID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
