package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestKeyFamily(t *testing.T) {
	assert.Equal(t, "fint:captcha:*", KeyFamily("fint:captcha:abc123:contact"))
	assert.Equal(t, "fint:status:*", KeyFamily("fint:status:42"))
	assert.Equal(t, "fint:constant", KeyFamily("fint:constant"))
	assert.Equal(t, "", KeyFamily(""))
}

func TestHookPassesThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })

	hook, err := NewHook("test", 0, noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	c.AddHook(hook)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "fint:status:42", "v", 0).Err())

	v, err := c.Get(ctx, "fint:status:42").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = c.Get(ctx, "fint:status:43").Result()
	assert.ErrorIs(t, err, redis.Nil)

	pipe := c.TxPipeline()
	pipe.Incr(ctx, "fint:captcha:count")
	pipe.Expire(ctx, "fint:captcha:count", 0)
	_, err = pipe.Exec(ctx)
	require.NoError(t, err)
}
