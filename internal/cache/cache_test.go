package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinTrack/internal/model"
	"FinTrack/storage/redis"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	redis.SetClient(c)
	return mr
}

func TestProtectedCache(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()
	pc := NewProtectedCache("test", time.Minute, WithEmptyTTL(10*time.Second))

	type payload struct {
		Name string `json:"name"`
	}

	var got payload
	lookup, err := pc.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.Equal(t, Miss, lookup)

	require.NoError(t, pc.Set(ctx, "a", payload{Name: "karachi"}))
	lookup, err = pc.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.Equal(t, Hit, lookup)
	assert.Equal(t, "karachi", got.Name)

	require.NoError(t, pc.SetEmpty(ctx, "b"))
	lookup, err = pc.Get(ctx, "b", &got)
	require.NoError(t, err)
	assert.Equal(t, HitEmpty, lookup)
	assert.Equal(t, 10*time.Second, mr.TTL(redis.Key("test", "b")))

	require.NoError(t, pc.BatchDelete(ctx, []string{"a", "b"}))
	assert.False(t, mr.Exists(redis.Key("test", "a")))
	assert.False(t, mr.Exists(redis.Key("test", "b")))
}

func TestProtectedCacheJitterHonoursContext(t *testing.T) {
	setupRedis(t)
	pc := NewProtectedCache("test", time.Minute, WithJitter(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var v string
	_, err := pc.Get(ctx, "x", &v)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusCache(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	c, lookup, err := GetStatus(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, Miss, lookup)
	assert.Nil(t, c)

	want := &model.Completion{IsUser: true, IsAddress: true}
	require.NoError(t, SetStatus(ctx, "42", want))

	c, lookup, err = GetStatus(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, Hit, lookup)
	assert.Equal(t, want, c)

	require.NoError(t, InvalidateStatus(ctx, "42"))
	_, lookup, err = GetStatus(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, Miss, lookup)
}

func TestCaptcha(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	_, err := GetCaptcha(ctx, "hash", SceneContact)
	assert.True(t, errors.Is(err, goredis.Nil))

	require.NoError(t, SetCaptcha(ctx, "hash", SceneContact, "123456"))
	code, err := GetCaptcha(ctx, "hash", SceneContact)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	require.NoError(t, DeleteCaptcha(ctx, "hash", SceneContact))
	_, err = GetCaptcha(ctx, "hash", SceneContact)
	assert.ErrorIs(t, err, goredis.Nil)

	for i := 1; i <= 3; i++ {
		n, err := IncrCaptchaCount(ctx, "hash")
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	n, err := GetCaptchaCount(ctx, "hash")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = GetCaptchaCount(ctx, "other")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSliderVerificationTokenIsSingleUse(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	token, err := SetSliderVerificationToken(ctx, "hash")
	require.NoError(t, err)

	assert.False(t, ValidateSliderVerificationToken(ctx, "hash", "wrong"))
	assert.False(t, ValidateSliderVerificationToken(ctx, "hash", ""))
	assert.True(t, ValidateSliderVerificationToken(ctx, "hash", token))
	assert.False(t, ValidateSliderVerificationToken(ctx, "hash", token))
}

func TestLockAndMessageMarks(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	lock, err := TryLock(ctx, "k", time.Second)
	require.NoError(t, err)
	require.NotNil(t, lock)
	other, err := TryLock(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.Nil(t, other)
	require.NoError(t, other.Release(ctx))
	require.NoError(t, lock.Release(ctx))

	next, _ := TryLock(ctx, "k", time.Second)
	require.NotNil(t, next)
	// 旧持有者释放不会删掉新锁
	require.NoError(t, lock.Release(ctx))
	again, _ := TryLock(ctx, "k", time.Second)
	assert.Nil(t, again)

	first, err := TryMarkMessageProcessing(ctx, "m1", 0)
	require.NoError(t, err)
	assert.True(t, first)
	dup, err := TryMarkMessageProcessing(ctx, "m1", 0)
	require.NoError(t, err)
	assert.False(t, dup)

	require.NoError(t, UnmarkMessageProcessing(ctx, "m1"))
	first, _ = TryMarkMessageProcessing(ctx, "m1", 0)
	assert.True(t, first)
	require.NoError(t, MarkMessageProcessed(ctx, "m1", 0))
}

func TestRefreshTokenUsable(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	ok, err := RefreshTokenUsable(ctx, "42", "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, SetRefreshToken(ctx, "42", "r2"))
	ok, _ = RefreshTokenUsable(ctx, "42", "r1")
	assert.False(t, ok)
	ok, _ = RefreshTokenUsable(ctx, "42", "r2")
	assert.True(t, ok)
}

func TestCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 50*time.Millisecond)
	boom := errors.New("boom")
	ctx := context.Background()

	assert.ErrorIs(t, cb.Call(ctx, func() error { return boom }), boom)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.ErrorIs(t, cb.Call(ctx, func() error { return boom }), boom)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Call(ctx, func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called)

	time.Sleep(80 * time.Millisecond)
	require.NoError(t, cb.Call(ctx, func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, "closed", cb.GetStats()["state"])
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 30*time.Millisecond)
	ctx := context.Background()

	_ = cb.Call(ctx, func() error { return errors.New("x") })
	assert.Equal(t, StateOpen, cb.GetState())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.GetState())
	_ = cb.Call(ctx, func() error { return errors.New("y") })
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreakerIgnoresMissAndCancellation(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, time.Minute)
	ctx := context.Background()

	assert.ErrorIs(t, cb.Call(ctx, func() error { return goredis.Nil }), goredis.Nil)
	assert.ErrorIs(t, cb.Call(ctx, func() error { return context.Canceled }), context.Canceled)
	assert.Equal(t, StateClosed, cb.GetState())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	called := false
	assert.ErrorIs(t, cb.Call(cancelled, func() error { called = true; return nil }), context.Canceled)
	assert.False(t, called)
}
