package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/hertz/pkg/app"
	hconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinTrack/config"
	"FinTrack/pkg/response"
	"FinTrack/pkg/token"
	"FinTrack/storage/redis"
)

func newEngine() *route.Engine {
	return route.NewEngine(hconfig.NewOptions([]hconfig.Option{}))
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error.Code
}

func setupAuth(t *testing.T) {
	t.Helper()
	prev := config.Cfg
	config.Cfg.JWTSecret = "middleware-secret"
	config.Cfg.JWTExpireMinutes = 5
	config.Cfg.JWTRefreshDays = 1
	t.Cleanup(func() { config.Cfg = prev })
	require.NoError(t, token.Init())
	require.NoError(t, Init())
}

func TestAuthMiddleware(t *testing.T) {
	setupAuth(t)
	e := newEngine()
	e.GET("/status/:userId", AuthMiddleware(), func(ctx context.Context, c *app.RequestContext) {
		if !RequireUser(ctx, c, c.Param("userId")) {
			return
		}
		response.Success(ctx, c, "ok")
	})

	pair, err := token.GenerateTokenPair("42")
	require.NoError(t, err)
	bearer := ut.Header{Key: "Authorization", Value: "Bearer " + pair.AccessToken}

	w := ut.PerformRequest(e, http.MethodGet, "/status/42", nil, bearer)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode())

	w = ut.PerformRequest(e, http.MethodGet, "/status/43", nil, bearer)
	assert.Equal(t, http.StatusForbidden, w.Result().StatusCode())
	assert.Equal(t, "FORBIDDEN_USER", errorCode(t, w.Result().Body()))

	w = ut.PerformRequest(e, http.MethodGet, "/status/42", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode())

	w = ut.PerformRequest(e, http.MethodGet, "/status/42", nil, ut.Header{Key: "Authorization", Value: "Bearer bogus"})
	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode())
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w.Result().Body()))
}

func TestRequestID(t *testing.T) {
	e := newEngine()
	e.Use(RequestIDMiddleware())
	e.GET("/", func(ctx context.Context, c *app.RequestContext) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := ut.PerformRequest(e, http.MethodGet, "/", nil)
	generated := string(w.Result().Header.Peek(RequestIDHeader))
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, string(w.Result().Body()))

	w = ut.PerformRequest(e, http.MethodGet, "/", nil, ut.Header{Key: RequestIDHeader, Value: "abc"})
	assert.Equal(t, "abc", string(w.Result().Header.Peek(RequestIDHeader)))
}

func TestCORSPreflight(t *testing.T) {
	e := newEngine()
	e.Use(CORSMiddleware())
	e.POST("/x", func(ctx context.Context, c *app.RequestContext) {})
	e.OPTIONS("/x", func(ctx context.Context, c *app.RequestContext) {})

	w := ut.PerformRequest(e, http.MethodOptions, "/x", nil,
		ut.Header{Key: "Origin", Value: "http://app.local"},
		ut.Header{Key: "Access-Control-Request-Method", Value: "POST"},
	)
	assert.Equal(t, http.StatusNoContent, w.Result().StatusCode())
	assert.Equal(t, "http://app.local", string(w.Result().Header.Peek("Access-Control-Allow-Origin")))
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	prev := config.Cfg
	config.Cfg.CORSAllowedOrigins = []string{"https://app.fintrack.io"}
	t.Cleanup(func() { config.Cfg = prev })

	e := newEngine()
	e.Use(CORSMiddleware())
	e.GET("/x", func(ctx context.Context, c *app.RequestContext) {})

	w := ut.PerformRequest(e, http.MethodGet, "/x", nil, ut.Header{Key: "Origin", Value: "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Result().StatusCode())

	w = ut.PerformRequest(e, http.MethodGet, "/x", nil, ut.Header{Key: "Origin", Value: "https://app.fintrack.io"})
	assert.Equal(t, http.StatusOK, w.Result().StatusCode())
	assert.Equal(t, "https://app.fintrack.io", string(w.Result().Header.Peek("Access-Control-Allow-Origin")))
}

func TestRecover(t *testing.T) {
	e := newEngine()
	e.Use(RecoverMiddlewareWithConfig(RecoverConfig{IsProduction: true}))
	e.GET("/panic", func(ctx context.Context, c *app.RequestContext) {
		panic("boom")
	})

	w := ut.PerformRequest(e, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Result().StatusCode())
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, w.Result().Body()))
}

func TestRecoverCallsSevereHook(t *testing.T) {
	called := false
	e := newEngine()
	e.Use(RecoverMiddlewareWithConfig(RecoverConfig{
		OnSevereError: func(context.Context, *app.RequestContext, interface{}, []byte) { called = true },
	}))
	e.GET("/panic", func(ctx context.Context, c *app.RequestContext) {
		var m map[string]int
		_ = []int{}[len(m)+1]
	})

	ut.PerformRequest(e, http.MethodGet, "/panic", nil)
	assert.True(t, called)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	redis.SetClient(c)

	prev := config.Cfg.RateLimitEnabled
	config.Cfg.RateLimitEnabled = true
	t.Cleanup(func() { config.Cfg.RateLimitEnabled = prev })

	e := newEngine()
	e.GET("/code", RateLimitMiddleware(RateLimitConfig{
		Window:        time.Minute,
		MaxRequests:   2,
		KeyPrefix:     "rate:test",
		ByIP:          true,
		BlockDuration: time.Minute,
	}), func(ctx context.Context, c *app.RequestContext) {
		c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 2; i++ {
		w := ut.PerformRequest(e, http.MethodGet, "/code", nil)
		assert.Equal(t, http.StatusOK, w.Result().StatusCode())
	}

	w := ut.PerformRequest(e, http.MethodGet, "/code", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Result().StatusCode())
	assert.Equal(t, "TOO_MANY_REQUESTS", errorCode(t, w.Result().Body()))

	w = ut.PerformRequest(e, http.MethodGet, "/code", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Result().StatusCode(), "blocked")

	mr.FastForward(2 * time.Minute)
	w = ut.PerformRequest(e, http.MethodGet, "/code", nil)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode())
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	c := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = c.Close() })
	redis.SetClient(c)
	mr.Close()

	prev := config.Cfg.RateLimitEnabled
	config.Cfg.RateLimitEnabled = true
	t.Cleanup(func() { config.Cfg.RateLimitEnabled = prev })

	e := newEngine()
	e.GET("/x", StepSubmitRateLimitMiddleware(), func(ctx context.Context, c *app.RequestContext) {
		c.String(http.StatusOK, "ok")
	})

	w := ut.PerformRequest(e, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode())
}
