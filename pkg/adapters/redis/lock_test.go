package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft/pkg/adapters/redis"
)

func TestLocker_MutualExclusion(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "weft:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "g", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("weft:lock:g"))

	short, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "g", 10*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("weft:lock:g"))

	unlock2, err := locker.Lock(ctx, "g", 10*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_UnlockDoesNotStealForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "weft:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "g", time.Second)
	require.NoError(t, err)

	// Our lock expires and someone else takes it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("weft:lock:g", "other"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("weft:lock:g")
	require.NoError(t, err)
	assert.Equal(t, "other", got)
}
