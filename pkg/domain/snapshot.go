package domain

import "time"

// CheckpointSnapshot is a persisted copy of an ExecutionState, keyed by
// conversation thread. At most one snapshot exists per thread; the latest
// write wins under the per-thread lock discipline.
type CheckpointSnapshot struct {
	ThreadID string          `json:"thread_id"`
	State    *ExecutionState `json:"state"`
	SavedAt  time.Time       `json:"saved_at"`
	// TurnCount increments each time the thread is checkpointed.
	TurnCount int `json:"turn_count"`

	// Sealed holds the encrypted state payload when a store middleware
	// encrypts snapshots at rest. When set, State is nil.
	Sealed string `json:"sealed,omitempty"`
}

// NewSnapshot builds a snapshot from a terminated state. The state is cloned
// so the snapshot stays stable even if the caller keeps the original.
func NewSnapshot(state *ExecutionState, turn int) *CheckpointSnapshot {
	return &CheckpointSnapshot{
		ThreadID:  state.ThreadID,
		State:     state.Clone(),
		SavedAt:   time.Now(),
		TurnCount: turn,
	}
}
