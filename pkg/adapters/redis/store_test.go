package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunSnapshotStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTLExpiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "g", &domain.Snapshot{}))
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "g")

	mr.FastForward(2 * time.Second)
	_, err = store.Load(ctx, "g")
	assert.ErrorIs(t, err, domain.ErrGraphNotFound)

	// The index is pruned against wall-clock time.
	time.Sleep(1200 * time.Millisecond)
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-graph", &domain.Snapshot{}))
	assert.True(t, mr.Exists("custom:app:my-graph"))
	assert.True(t, mr.Exists("custom:app:index"))
}

func TestRedisStore_Updates(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := store.Updates(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "g1", &domain.Snapshot{}))
	select {
	case id := <-updates:
		assert.Equal(t, "g1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-updates
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}
