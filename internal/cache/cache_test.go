package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/rasterize/internal/config"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewWithClient(client, ttl)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestKeyDeterministic(t *testing.T) {
	input := []byte("same payload")

	assert.Equal(t, Key("convert", input), Key("convert", input))
	assert.NotEqual(t, Key("convert", input), Key("probe", input))
	assert.NotEqual(t, Key("convert", input), Key("convert", []byte("other payload")))
	assert.Contains(t, Key("convert", input), "rasterize:convert:")
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	_, err := c.Get(context.Background(), Key("convert", []byte("nothing")))
	assert.ErrorIs(t, err, ErrMiss)
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	key := Key("convert", []byte("payload"))
	value := []byte{0x89, 0x50, 0x4E, 0x47}

	require.NoError(t, c.Set(ctx, key, value))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestEntryExpires(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	key := Key("probe", []byte("payload"))
	require.NoError(t, c.Set(ctx, key, []byte(`{"width":8}`)))

	mr.FastForward(time.Minute)

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNewVerifiesConnectivity(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.CacheConfig{
		RedisAddr: mr.Addr(),
		TTL:       time.Minute,
	}

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Ping(context.Background()))
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	cfg := &config.CacheConfig{
		RedisAddr:   "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
	}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
