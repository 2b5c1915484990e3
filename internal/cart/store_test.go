package cart

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	id := uuid.NewString()

	empty, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	c := &Cart{}
	c.Add(product("x", "3.00"))
	c.Add(product("x", "3.00"))
	require.NoError(t, s.Save(ctx, id, c))

	// the saved copy must not follow later edits
	c.Add(product("y", "1.00"))

	loaded, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalItems())
	assert.True(t, loaded.TotalPrice().Equal(decimal.NewFromInt(6)), loaded.TotalPrice().String())

	other, err := s.Load(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())

	require.NoError(t, s.Delete(ctx, id))
	gone, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, gone.IsEmpty())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreSavingEmptyCartDropsIt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	c := &Cart{}
	c.Add(product("x", "1.00"))
	require.NoError(t, s.Save(ctx, "sess", c))
	require.NoError(t, s.Save(ctx, "sess", &Cart{}))

	assert.Empty(t, s.carts)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	exerciseStore(t, NewRedisStore(client, time.Minute))
}
