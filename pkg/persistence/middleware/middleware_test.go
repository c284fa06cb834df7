package middleware_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestra/veritor/pkg/adapters/memory"
	"github.com/attestra/veritor/pkg/domain"
	"github.com/attestra/veritor/pkg/persistence/middleware"
)

func sampleSnapshot(threadID string) *domain.CheckpointSnapshot {
	state := domain.NewState("what is the allowance for jane.doe@example.com?", threadID)
	state.TraceID = "trace-1"
	state.FinalResponse = "answer for jane.doe@example.com"
	return domain.NewSnapshot(state, 1)
}

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryption_RoundTrip(t *testing.T) {
	store := middleware.Chain(memory.NewStore(),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)}))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "thread-1", sampleSnapshot("thread-1")))

	snap, err := store.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "thread-1", snap.ThreadID)
	assert.Equal(t, 1, snap.TurnCount)
	assert.Contains(t, snap.State.Query, "allowance")
	assert.Empty(t, snap.Sealed)
}

func TestEncryption_BackingStoreSeesOnlyCiphertext(t *testing.T) {
	backing := memory.NewStore()
	store := middleware.Chain(backing,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)}))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "thread-1", sampleSnapshot("thread-1")))

	raw, err := backing.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.Nil(t, raw.State, "plaintext state must not reach the backing store")
	assert.NotEmpty(t, raw.Sealed)
	assert.Equal(t, 1, raw.TurnCount, "monitoring fields stay visible")
}

func TestEncryption_KeyRotation(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewStore()

	oldStore := middleware.Chain(backing,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)}))
	require.NoError(t, oldStore.Save(ctx, "thread-1", sampleSnapshot("thread-1")))

	// New deployment: rotated active key, old key demoted to fallback.
	newStore := middleware.Chain(backing,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    testKey(2),
			FallbackKeys: [][]byte{testKey(1)},
		}))

	snap, err := newStore.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.Contains(t, snap.State.Query, "allowance")
}

func TestEncryption_WrongKeyFails(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewStore()

	oldStore := middleware.Chain(backing,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)}))
	require.NoError(t, oldStore.Save(ctx, "thread-1", sampleSnapshot("thread-1")))

	otherStore := middleware.Chain(backing,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(9)}))

	_, err := otherStore.Load(ctx, "thread-1")
	assert.Error(t, err)
}

func TestEncryption_RejectsPlaintextSnapshot(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewStore()
	require.NoError(t, backing.Save(ctx, "thread-1", sampleSnapshot("thread-1")))

	store := middleware.Chain(backing,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)}))

	_, err := store.Load(ctx, "thread-1")
	assert.Error(t, err)
}

func TestPII_MasksPersistedTextOnly(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewStore()
	store := middleware.Chain(backing,
		middleware.NewPIIMiddleware([]string{`[\w.]+@[\w.]+`}))

	snap := sampleSnapshot("thread-1")
	require.NoError(t, store.Save(ctx, "thread-1", snap))

	persisted, err := backing.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.NotContains(t, persisted.State.Query, "jane.doe@example.com")
	assert.Contains(t, persisted.State.Query, "***")
	assert.NotContains(t, persisted.State.FinalResponse, "jane.doe@example.com")

	// The snapshot held by the caller is untouched.
	assert.Contains(t, snap.State.Query, "jane.doe@example.com")
}

func TestChain_ScrubThenEncrypt(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewStore()
	store := middleware.Chain(backing,
		middleware.NewPIIMiddleware([]string{`[\w.]+@[\w.]+`}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)}),
	)

	require.NoError(t, store.Save(ctx, "thread-1", sampleSnapshot("thread-1")))

	snap, err := store.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.NotContains(t, snap.State.Query, "jane.doe@example.com")
	assert.Contains(t, snap.State.Query, "***")
}
