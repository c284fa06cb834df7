package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/attestra/veritor/internal/logging"
	"github.com/attestra/veritor/pkg/domain"
	"github.com/attestra/veritor/pkg/ports"
)

// defaultLockTTL bounds how long a distributed lock may outlive a crashed
// holder before expiring on its own.
const defaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates checkpoint access with single-writer-per-thread
// discipline: concurrent turns of the same conversation are serialized, while
// distinct threads proceed without coordination. It uses reference counting
// to garbage collect unused locks.
type Manager struct {
	store ports.CheckpointStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active per-thread locks

	locker  ports.DistributedLocker // Optional cross-replica locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across engine replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides the distributed lock expiry.
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

// NewManager creates a new session manager over a checkpoint store.
func NewManager(store ports.CheckpointStore, opts ...Option) *Manager {
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
// The caller MUST Lock the entry.mu, and then call release(threadID) after
// unlocking.
func (m *Manager) acquire(threadID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[threadID]
	if !exists {
		entry = &lockEntry{}
		m.locks[threadID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(threadID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[threadID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, threadID)
	}
}

// Checkpoint persists a terminated execution state for its thread, deriving
// the turn count from the previous snapshot. Latest write wins.
func (m *Manager) Checkpoint(ctx context.Context, state *domain.ExecutionState) error {
	if state.ThreadID == "" {
		return fmt.Errorf("cannot checkpoint a state without a thread ID")
	}

	return m.WithLock(ctx, state.ThreadID, func(ctx context.Context) error {
		turn := 1
		prev, err := m.store.Load(ctx, state.ThreadID)
		switch {
		case err == nil:
			turn = prev.TurnCount + 1
		case errors.Is(err, domain.ErrSnapshotNotFound):
			// First turn of this conversation.
		default:
			return fmt.Errorf("failed to read previous checkpoint: %w", err)
		}

		return m.store.Save(ctx, state.ThreadID, domain.NewSnapshot(state, turn))
	})
}

// Load retrieves the latest checkpoint for a thread.
func (m *Manager) Load(ctx context.Context, threadID string) (*domain.CheckpointSnapshot, error) {
	var snap *domain.CheckpointSnapshot
	err := m.WithLock(ctx, threadID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, threadID)
		return err
	})
	return snap, err
}

// Delete removes the checkpoint for a thread.
func (m *Manager) Delete(ctx context.Context, threadID string) error {
	return m.WithLock(ctx, threadID, func(ctx context.Context) error {
		return m.store.Delete(ctx, threadID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying checkpoint store.
func (m *Manager) Store() ports.CheckpointStore {
	return m.store
}

// WithLock executes fn while holding the per-thread lock, and the
// distributed lock when a locker is configured.
func (m *Manager) WithLock(ctx context.Context, threadID string, fn func(context.Context) error) error {
	entry := m.acquire(threadID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(threadID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, threadID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"thread_id", threadID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
