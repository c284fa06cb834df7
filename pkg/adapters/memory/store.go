package memory

import (
	"context"
	"sync"

	"github.com/attestra/veritor/pkg/domain"
)

// Store implements ports.CheckpointStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.CheckpointSnapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory checkpoint store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.CheckpointSnapshot),
	}
}

// Save persists the snapshot in memory.
func (s *Store) Save(ctx context.Context, threadID string, snap *domain.CheckpointSnapshot) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := *snap
	copied.State = snap.State.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[threadID] = &copied
	return nil
}

// Load retrieves the snapshot from memory.
func (s *Store) Load(ctx context.Context, threadID string) (*domain.CheckpointSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[threadID]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}

	// Copy on read so the caller can't mutate store state by pointer
	ret := *snap
	ret.State = snap.State.Clone()
	return &ret, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, threadID)
	return nil
}

// List returns threads with an active checkpoint.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threads := make([]string, 0, len(s.data))
	for id := range s.data {
		threads = append(threads, id)
	}
	return threads, nil
}
