package middleware

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"FinTrack/pkg/errors"
	"FinTrack/pkg/response"
	"FinTrack/pkg/token"
)

const (
	IdentityKey = token.IdentityKey
)

var (
	authMiddleware *jwt.HertzJWTMiddleware
)

func initAuthMiddleware() error {
	// 与 token 包共用密钥和时效
	generator := token.GetGenerator()
	if generator == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	mw, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "FinTrack API",
		Key:         generator.Key,
		Timeout:     generator.Timeout,
		MaxRefresh:  generator.MaxRefresh,
		IdentityKey: IdentityKey,
		TimeFunc:    generator.TimeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			uid, err := token.UserIDFromClaims(jwt.ExtractClaims(ctx, c))
			if err != nil {
				return nil
			}
			return uid
		},

		Authorizator: func(data interface{}, ctx context.Context, c *app.RequestContext) bool {
			uid, ok := data.(string)
			return ok && uid != ""
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			response.Error(ctx, c, errors.Unauthorized)
		},

		TokenLookup:   "header: Authorization, query: token, cookie: jwt",
		TokenHeadName: "Bearer",
	})
	if err != nil {
		return fmt.Errorf("failed to create auth middleware: %w", err)
	}

	authMiddleware = mw
	return nil
}

func AuthMiddleware() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return authMiddleware.MiddlewareFunc()
}

// GetUserID 从请求上下文中获取用户ID（public_id，字符串格式）
func GetUserID(ctx context.Context, c *app.RequestContext) (string, bool) {
	userID, exists := c.Get(IdentityKey)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok {
		return "", false
	}

	return id, true
}

// RequireUser 路径或请求体中的 userId 必须是当前登录用户，否则写入 403 并返回 false
func RequireUser(ctx context.Context, c *app.RequestContext, userID string) bool {
	uid, ok := GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		c.Abort()
		return false
	}
	if userID != uid {
		response.Error(ctx, c, errors.ForbiddenUser)
		c.Abort()
		return false
	}
	return true
}
