package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"FinTrack/storage/redis"
)

// 滑块验证通过后签发的 token：fint:slider:verify:{phoneHash}
// 用于发送次数超过阈值后继续发送验证码

const (
	sliderPrefix = "slider"
	// SliderTokenTTL 滑块验证 token 有效期
	SliderTokenTTL = 10 * time.Minute
)

// SetSliderVerificationToken 存储滑块验证通过后的 token
func SetSliderVerificationToken(ctx context.Context, phoneHash string) (string, error) {
	token := uuid.New().String()
	key := redis.Key(sliderPrefix, "verify", phoneHash)
	err := redis.Client().Set(ctx, key, token, SliderTokenTTL).Err()
	return token, err
}

// ValidateSliderVerificationToken 校验并消费 token
func ValidateSliderVerificationToken(ctx context.Context, phoneHash, token string) bool {
	if token == "" {
		return false
	}
	key := redis.Key(sliderPrefix, "verify", phoneHash)
	storedToken, err := redis.Client().Get(ctx, key).Result()
	if err != nil || storedToken != token {
		return false
	}
	redis.Client().Del(ctx, key)
	return true
}
