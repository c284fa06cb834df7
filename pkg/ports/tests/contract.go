package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestra/veritor/pkg/domain"
	"github.com/attestra/veritor/pkg/ports"
)

// CheckpointStoreContract is a reusable suite that verifies an adapter
// complies with ports.CheckpointStore. Adapters run it against a fresh,
// empty store.
func CheckpointStoreContract(t *testing.T, store ports.CheckpointStore) {
	t.Helper()
	ctx := context.Background()

	snapshot := func(threadID string, turn int) *domain.CheckpointSnapshot {
		state := domain.NewState("what is the maximum daily allowance?", threadID)
		state.TraceID = "trace-" + threadID
		state.Intent = "allowance"
		state.IntentConfidence = 0.8
		state.Visit(domain.NodeInputValidation)
		state.Visit(domain.NodeIntentDetection)
		state.FinalResponse = "The maximum is 320.00 EUR."
		return domain.NewSnapshot(state, turn)
	}

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-thread")
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Save_Load_RoundTrip", func(t *testing.T) {
		snap := snapshot("thread-1", 1)
		require.NoError(t, store.Save(ctx, "thread-1", snap))

		got, err := store.Load(ctx, "thread-1")
		require.NoError(t, err)
		assert.Equal(t, "thread-1", got.ThreadID)
		assert.Equal(t, 1, got.TurnCount)
		assert.Equal(t, snap.State.TraceID, got.State.TraceID)
		assert.Equal(t, snap.State.FinalResponse, got.State.FinalResponse)
		assert.Equal(t, snap.State.NodeHistory, got.State.NodeHistory)
	})

	t.Run("Save_LatestWriteWins", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "thread-2", snapshot("thread-2", 1)))
		require.NoError(t, store.Save(ctx, "thread-2", snapshot("thread-2", 2)))

		got, err := store.Load(ctx, "thread-2")
		require.NoError(t, err)
		assert.Equal(t, 2, got.TurnCount)
	})

	t.Run("Load_IsIsolated", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "thread-3", snapshot("thread-3", 1)))

		first, err := store.Load(ctx, "thread-3")
		require.NoError(t, err)
		first.State.FinalResponse = "mutated by caller"

		second, err := store.Load(ctx, "thread-3")
		require.NoError(t, err)
		assert.NotEqual(t, "mutated by caller", second.State.FinalResponse)
	})

	t.Run("List", func(t *testing.T) {
		threads, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, threads, "thread-1")
		assert.Contains(t, threads, "thread-2")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "thread-1"))
		_, err := store.Load(ctx, "thread-1")
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})
}
