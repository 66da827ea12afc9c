package cache

import (
	"context"
	"errors"
	"time"

	ri "github.com/redis/go-redis/v9"

	"FinTrack/config"
	"FinTrack/storage/redis"
)

/*
用户在 contact 步骤请求手机验证码
    ↓
[Handler] 参数校验
    ↓
[Service] 发送验证码逻辑
    ├─ 手机号哈希化（用于 Redis key）
    ├─ 检查每日发送次数
    ├─ 超过阈值需要滑块验证 token
    ├─ 生成 6 位验证码并存入 Redis
    └─ 调用短信服务发送，失败则删除验证码
*/

// 验证码：fint:captcha:{phoneHash}:{scene}
// 每日计数：fint:captcha:count:{phoneHash}:{date}，次日零点过期

const (
	captchaPrefix = "captcha"

	// SceneContact 引导流程绑定手机号
	SceneContact = "contact"
)

// SetCaptcha 存储验证码
func SetCaptcha(ctx context.Context, phoneHash, scene, code string) error {
	key := redis.Key(captchaPrefix, phoneHash, scene)
	ttl := time.Duration(config.Cfg.CaptchaExpireSeconds) * time.Second

	return redis.Client().Set(ctx, key, code, ttl).Err()
}

// GetCaptcha 读取验证码，不存在时返回 redis.Nil
func GetCaptcha(ctx context.Context, phoneHash, scene string) (string, error) {
	key := redis.Key(captchaPrefix, phoneHash, scene)
	return redis.Client().Get(ctx, key).Result()
}

func DeleteCaptcha(ctx context.Context, phoneHash, scene string) error {
	key := redis.Key(captchaPrefix, phoneHash, scene)
	return redis.Client().Del(ctx, key).Err()
}

// IncrCaptchaCount 增加今日发送计数，返回当前次数
func IncrCaptchaCount(ctx context.Context, phoneHash string) (int, error) {
	now := time.Now()
	key := redis.Key(captchaPrefix, "count", phoneHash, now.Format("2006-01-02"))

	count, err := redis.Client().Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if count == 1 {
		tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		redis.Client().Expire(ctx, key, tomorrow.Sub(now))
	}

	return int(count), nil
}

// GetCaptchaCount 今日已发送次数
func GetCaptchaCount(ctx context.Context, phoneHash string) (int, error) {
	key := redis.Key(captchaPrefix, "count", phoneHash, time.Now().Format("2006-01-02"))

	count, err := redis.Client().Get(ctx, key).Int()
	if errors.Is(err, ri.Nil) {
		return 0, nil
	}

	return count, err
}
