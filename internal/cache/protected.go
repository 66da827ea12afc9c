package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	ri "github.com/redis/go-redis/v9"

	"FinTrack/config"
	"FinTrack/storage/redis"
)

const (
	// 空值缓存标识
	emptyValueFlag = "__EMPTY__"
	// 空值缓存TTL，较短时间避免长期占用
	emptyValueTTL = 5 * time.Minute
)

// Lookup 缓存查询结果
type Lookup int

const (
	Miss      Lookup = iota // 未命中
	Hit                     // 命中正常值
	HitEmpty                // 命中空值标识
)

// ProtectedCache 带保护的缓存包装器
type ProtectedCache struct {
	keyPrefix string
	ttl       time.Duration
	emptyTTL  time.Duration
	// jitter 读取前的随机延迟上限，防止大量 key 同时失效后集中回源
	jitter time.Duration
}

// CacheOption ProtectedCache 选项
type CacheOption func(*ProtectedCache)

// WithJitter 设置读取随机延迟上限
func WithJitter(d time.Duration) CacheOption {
	return func(pc *ProtectedCache) {
		pc.jitter = d
	}
}

// WithEmptyTTL 设置空值缓存时间
func WithEmptyTTL(d time.Duration) CacheOption {
	return func(pc *ProtectedCache) {
		pc.emptyTTL = d
	}
}

// NewProtectedCache 创建受保护的缓存实例
func NewProtectedCache(keyPrefix string, ttl time.Duration, opts ...CacheOption) *ProtectedCache {
	pc := &ProtectedCache{
		keyPrefix: keyPrefix,
		ttl:       ttl,
		emptyTTL:  emptyValueTTL,
	}
	for _, opt := range opts {
		opt(pc)
	}
	return pc
}

// Set 设置缓存（带空值保护）
func (pc *ProtectedCache) Set(ctx context.Context, key string, value interface{}) error {
	cacheKey := redis.Key(pc.keyPrefix, key)

	var data string
	var ttl time.Duration

	if value == nil {
		// 空值保护：存储特殊标识，使用较短TTL
		data = emptyValueFlag
		ttl = pc.emptyTTL
	} else {
		dataBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal cache value: %w", err)
		}
		data = string(dataBytes)
		ttl = pc.ttl
	}

	return redis.Client().Set(ctx, cacheKey, data, ttl).Err()
}

// SetEmpty 写入空值标识
func (pc *ProtectedCache) SetEmpty(ctx context.Context, key string) error {
	return pc.Set(ctx, key, nil)
}

// Get 获取缓存（带空值保护和防雪崩）
func (pc *ProtectedCache) Get(ctx context.Context, key string, dest interface{}) (Lookup, error) {
	cacheKey := redis.Key(pc.keyPrefix, key)

	if err := pc.delay(ctx); err != nil {
		return Miss, err
	}

	data, err := redis.Client().Get(ctx, cacheKey).Result()
	if err != nil {
		if errors.Is(err, ri.Nil) {
			return Miss, nil
		}
		return Miss, fmt.Errorf("failed to get cache: %w", err)
	}

	if data == emptyValueFlag {
		return HitEmpty, nil
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return Miss, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return Hit, nil
}

// Delete 删除缓存
func (pc *ProtectedCache) Delete(ctx context.Context, key string) error {
	cacheKey := redis.Key(pc.keyPrefix, key)
	return redis.Client().Del(ctx, cacheKey).Err()
}

// BatchDelete 批量删除缓存
func (pc *ProtectedCache) BatchDelete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	pipe := redis.Client().Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, redis.Key(pc.keyPrefix, key))
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (pc *ProtectedCache) delay(ctx context.Context) error {
	if pc.jitter <= 0 {
		return nil
	}

	d := time.Duration(rand.Int63n(int64(pc.jitter)))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// 预定义的缓存实例
var (
	// StatusProtectedCache 注册状态，每次步骤提交后失效
	StatusProtectedCache = NewProtectedCache("user:status", config.Cfg.StatusCacheTTL(), WithEmptyTTL(30*time.Second))
	// ConstantProtectedCache 国家、城市、货币等基础数据
	ConstantProtectedCache = NewProtectedCache("constant", 6*time.Hour, WithJitter(50*time.Millisecond))
)
