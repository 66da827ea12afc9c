package cache

import (
	"context"
	"errors"
	"time"

	ri "github.com/redis/go-redis/v9"

	"FinTrack/config"
	"FinTrack/storage/redis"
)

const (
	tokenPrefix = "token"
)

// SetRefreshToken 存储当前有效的 refresh token
// Key: fint:token:refresh:{user_id}
func SetRefreshToken(ctx context.Context, userID, refreshToken string) error {
	key := redis.Key(tokenPrefix, "refresh", userID)
	ttl := time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour

	return redis.Client().Set(ctx, key, refreshToken, ttl).Err()
}

// RefreshTokenUsable refresh token 是否可用。
// 未登记过的 token（由认证服务签发）视为可用；已登记时必须与最新一次一致，旧 token 复用即拒绝。
func RefreshTokenUsable(ctx context.Context, userID, refreshToken string) (bool, error) {
	key := redis.Key(tokenPrefix, "refresh", userID)
	stored, err := redis.Client().Get(ctx, key).Result()
	if errors.Is(err, ri.Nil) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return stored == refreshToken, nil
}
