package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	ri "github.com/redis/go-redis/v9"

	"FinTrack/storage/redis"
)

const lockPrefix = "lock"

// 只删除自己持有的锁，过期后被他人重新获取时不误删
var releaseScript = ri.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Lock SETNX 锁，值为随机 token
type Lock struct {
	key   string
	token string
}

// TryLock 已被占用时返回 nil, nil
func TryLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	l := &Lock{key: redis.Key(lockPrefix, key), token: uuid.NewString()}
	ok, err := redis.Client().SetNX(ctx, l.key, l.token, ttl).Result()
	if err != nil || !ok {
		return nil, err
	}
	return l, nil
}

// Release 提前释放；nil 锁可安全调用
func (l *Lock) Release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return releaseScript.Run(ctx, redis.Client(), []string{l.key}, l.token).Err()
}
