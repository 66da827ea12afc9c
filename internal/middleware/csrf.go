package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/csrf"
	"github.com/hertz-contrib/sessions"
	"github.com/hertz-contrib/sessions/cookie"
	"go.uber.org/zap"

	"FinTrack/config"
	"FinTrack/pkg/errors"
	"FinTrack/pkg/logger"
	"FinTrack/pkg/response"
)

const csrfSessionName = "fintrack-csrf"

// CSRFMiddleware 基于 cookie session 的 CSRF 校验，仅浏览器客户端需要。
// 未开启时返回空切片，可直接展开到路由组。
func CSRFMiddleware() []app.HandlerFunc {
	if !config.Cfg.CSRFEnabled {
		return nil
	}

	store := cookie.NewStore([]byte(config.Cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   config.Cfg.IsProduction(),
	})

	return []app.HandlerFunc{
		sessions.New(csrfSessionName, store),
		csrf.New(
			csrf.WithSecret(config.Cfg.CSRFSecret),
			csrf.WithErrorFunc(func(ctx context.Context, c *app.RequestContext) {
				logger.Logger.Warn("CSRF token rejected",
					zap.String("path", string(c.Path())),
					zap.String("client_ip", c.ClientIP()),
				)
				response.Error(ctx, c, errors.CSRFInvalid)
				c.Abort()
			}),
		),
	}
}

// CSRFToken 为当前 session 签发 token，GET /v1/csrf-token
func CSRFToken(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, map[string]string{"csrfToken": csrf.GetToken(c)})
}
