package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client, "contract-session")
	ports.RunAttributeStoreContract(t, store)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	store := redis.NewFromClient(client, "ttl-session", redis.WithTTL(time.Minute))
	require.NoError(t, store.Set(ctx, "who", "ada"))

	// The write must arm the hash expiration.
	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, "who")
	require.NoError(t, err)
	assert.False(t, ok, "attributes should expire with the hash")
}

func TestRedisProvider_Isolation(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()

	provider := redis.NewProvider(client, redis.WithPrefix("arbor:test:"))

	a := provider.Scope("a")
	b := provider.Scope("b")

	require.NoError(t, a.Set(ctx, "who", "a"))
	_, ok, err := b.Get(ctx, "who")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, provider.Drop(ctx, "a"))
	_, ok, err = provider.Scope("a").Get(ctx, "who")
	require.NoError(t, err)
	assert.False(t, ok)
}
