package ports

import (
	"context"

	"github.com/attestra/veritor/pkg/domain"
)

// CheckpointStore defines the interface for persisting execution snapshots.
// This enables multi-turn conversation continuity across requests and
// replicas. Implementations must be safe for concurrent use; serialization
// per thread is the session manager's job, not the store's.
type CheckpointStore interface {
	// Save persists the snapshot for its thread ID. Latest write wins.
	Save(ctx context.Context, threadID string, snap *domain.CheckpointSnapshot) error

	// Load retrieves the snapshot for a thread ID.
	// Returns domain.ErrSnapshotNotFound if the thread has no checkpoint.
	Load(ctx context.Context, threadID string) (*domain.CheckpointSnapshot, error)

	// Delete removes the snapshot for a thread ID.
	Delete(ctx context.Context, threadID string) error

	// List returns the thread IDs with an active checkpoint.
	List(ctx context.Context) ([]string, error)
}
