package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"FinTrack/config"
	"FinTrack/pkg/errors"
	"FinTrack/pkg/logger"
	"FinTrack/pkg/response"
	"FinTrack/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口
	Window time.Duration
	// 时间窗口内最大请求数
	MaxRequests int
	KeyPrefix   string
	// 优先按用户限流，未认证时退回 IP
	ByUserID bool
	ByIP     bool
	// 超限后的封禁时长，0 表示不封禁
	BlockDuration time.Duration
}

// DefaultRateLimitConfig 通用接口限流
func DefaultRateLimitConfig() RateLimitConfig {
	rps := config.Cfg.RateLimitRPS
	if rps <= 0 {
		rps = 100
	}
	return RateLimitConfig{
		Window:      time.Second,
		MaxRequests: rps,
		KeyPrefix:   "rate:api",
		ByUserID:    true,
		ByIP:        true,
	}
}

// StepSubmitRateLimitConfig 引导步骤提交
var StepSubmitRateLimitConfig = RateLimitConfig{
	Window:        time.Minute,
	MaxRequests:   20,
	KeyPrefix:     "rate:step",
	ByUserID:      true,
	BlockDuration: 5 * time.Minute,
}

// ContactCodeRateLimitConfig 发送验证码和滑块验证，按 IP
var ContactCodeRateLimitConfig = RateLimitConfig{
	Window:        time.Minute,
	MaxRequests:   5,
	KeyPrefix:     "rate:captcha",
	ByIP:          true,
	BlockDuration: 30 * time.Minute,
}

// AuthRateLimitConfig 刷新令牌
var AuthRateLimitConfig = RateLimitConfig{
	Window:        time.Minute,
	MaxRequests:   10,
	KeyPrefix:     "rate:auth",
	ByIP:          true,
	BlockDuration: 15 * time.Minute,
}

// RateLimiter 基于 ZSET 的滑动窗口限流
type RateLimiter struct {
	config RateLimitConfig
	now    func() time.Time
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	return &RateLimiter{config: config, now: time.Now}
}

func (rl *RateLimiter) identifier(ctx context.Context, c *app.RequestContext) string {
	if rl.config.ByUserID {
		if userID, exists := GetUserID(ctx, c); exists {
			return "user:" + userID
		}
	}
	return "ip:" + c.ClientIP()
}

// Allow 返回是否放行以及窗口内的请求数
func (rl *RateLimiter) Allow(ctx context.Context, id string) (bool, int, error) {
	key := redis.Key(rl.config.KeyPrefix, id)
	now := rl.now()
	windowStart := now.Add(-rl.config.Window)

	pipe := redis.Client().TxPipeline()
	// 先移除窗口外的记录
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window+10*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(card.Val())
	return count <= rl.config.MaxRequests, count, nil
}

func (rl *RateLimiter) blockKey(id string) string {
	return redis.Key(rl.config.KeyPrefix, "block", id)
}

func (rl *RateLimiter) Block(ctx context.Context, id string) error {
	if rl.config.BlockDuration <= 0 {
		return nil
	}
	return redis.Client().Set(ctx, rl.blockKey(id), "1", rl.config.BlockDuration).Err()
}

func (rl *RateLimiter) IsBlocked(ctx context.Context, id string) (bool, error) {
	if rl.config.BlockDuration <= 0 {
		return false, nil
	}
	n, err := redis.Client().Exists(ctx, rl.blockKey(id)).Result()
	return n > 0, err
}

// RateLimitMiddleware Redis 不可用时放行，只记录日志
func RateLimitMiddleware(cfg RateLimitConfig) app.HandlerFunc {
	limiter := NewRateLimiter(cfg)

	return func(ctx context.Context, c *app.RequestContext) {
		if !config.Cfg.RateLimitEnabled {
			c.Next(ctx)
			return
		}

		id := limiter.identifier(ctx, c)

		blocked, err := limiter.IsBlocked(ctx, id)
		if err != nil {
			logger.Logger.Warn("Failed to check block status", zap.String("key", cfg.KeyPrefix), zap.Error(err))
			c.Next(ctx)
			return
		}
		if blocked {
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		allowed, count, err := limiter.Allow(ctx, id)
		if err != nil {
			logger.Logger.Warn("Failed to check rate limit", zap.String("key", cfg.KeyPrefix), zap.Error(err))
			c.Next(ctx)
			return
		}

		remaining := cfg.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			if err := limiter.Block(ctx, id); err != nil {
				logger.Logger.Error("Failed to block client", zap.String("id", id), zap.Error(err))
			}
			logger.Logger.Warn("Rate limit exceeded",
				zap.String("key", cfg.KeyPrefix),
				zap.String("id", id),
				zap.Int("count", count),
			)
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}

func GeneralRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(DefaultRateLimitConfig())
}

func StepSubmitRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(StepSubmitRateLimitConfig)
}

func ContactCodeRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(ContactCodeRateLimitConfig)
}

func AuthRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(AuthRateLimitConfig)
}
