package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/domain"
)

// setupTestRedis creates a miniredis server and returns a RedisView instance
func setupTestRedis(t *testing.T) (*RedisView, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	view := NewRedisView(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return view, mr, cleanup
}

func TestGet_Success(t *testing.T) {
	view, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	cart := &domain.Cart{
		Owner: "user-1",
		Lines: []domain.CartLine{
			{ID: "l1", ProductID: "prod-1", VariantID: "var-250", Quantity: 2},
		},
	}
	data, _ := json.Marshal(cart)
	mr.Set(viewKey("user-1"), string(data))

	got, err := view.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.Owner)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "prod-1", got.Lines[0].ProductID)
}

func TestGet_CacheMiss(t *testing.T) {
	view, _, cleanup := setupTestRedis(t)
	defer cleanup()

	got, err := view.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestGet_InvalidJSON(t *testing.T) {
	view, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Set(viewKey("user-1"), "not-json")

	_, err := view.Get(context.Background(), "user-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestSetThenGet(t *testing.T) {
	view, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	cart := &domain.Cart{Owner: "user-1"}
	require.NoError(t, view.Set(ctx, "user-1", cart))

	got, err := view.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.Owner)
}

func TestDelete(t *testing.T) {
	view, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, view.Set(ctx, "user-1", &domain.Cart{Owner: "user-1"}))
	require.NoError(t, view.Delete(ctx, "user-1"))

	assert.False(t, mr.Exists(viewKey("user-1")))
	_, err := view.Get(ctx, "user-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
