package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestra/veritor/pkg/adapters/redis"
)

func TestLocker_AcquireAndRelease(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	locker := redis.NewLocker(client, "veritor:thread:")

	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "thread-1", 5*time.Second)
	require.NoError(t, err)

	// Second acquisition of the same thread must block until released.
	blockedCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(blockedCtx, "thread-1", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Other threads are unaffected.
	unlockOther, err := locker.Lock(ctx, "thread-2", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlockOther(ctx))

	require.NoError(t, unlock(ctx))

	// Released lock can be re-acquired.
	unlock2, err := locker.Lock(ctx, "thread-1", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}
