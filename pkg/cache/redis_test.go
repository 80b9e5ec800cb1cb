package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	c := NewFromClient(redis.NewClient(&redis.Options{Addr: server.Addr()}))
	t.Cleanup(func() { c.Close() })
	return c, server
}

func TestMarkOnceClaimsKeyOnce(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	claimed, err := c.MarkOnce(ctx, "webhook:payflow:txn_1", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = c.MarkOnce(ctx, "webhook:payflow:txn_1", time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim on the same key must lose")
}

func TestMarkOnceExpires(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()

	_, err := c.MarkOnce(ctx, "webhook:payflow:txn_2", time.Minute)
	require.NoError(t, err)

	server.FastForward(2 * time.Minute)

	claimed, err := c.MarkOnce(ctx, "webhook:payflow:txn_2", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "expired key is claimable again")
}

func TestExistsAndDel(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	ok, err := c.Exists(ctx, "webhook:payflow:txn_3")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.MarkOnce(ctx, "webhook:payflow:txn_3", time.Hour)
	require.NoError(t, err)

	ok, err = c.Exists(ctx, "webhook:payflow:txn_3")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Del(ctx, "webhook:payflow:txn_3"))

	ok, err = c.Exists(ctx, "webhook:payflow:txn_3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPing(t *testing.T) {
	c, server := newTestCache(t)

	require.NoError(t, c.Ping(context.Background()))

	server.Close()
	assert.Error(t, c.Ping(context.Background()))
}
