package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	ri "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"FinTrack/pkg/logger"
)

// ErrBreakerOpen 熔断中，调用方应直接回源
var ErrBreakerOpen = errors.New("circuit breaker is open")

// State 熔断器状态
type State = gobreaker.State

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// CircuitBreaker 保护 Redis 调用，连续失败达到阈值后在 resetTimeout 内直接拒绝。
// 半开时只放行一次探测，成功即恢复。
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	threshold := uint32(maxFailures)
	if threshold == 0 {
		threshold = 1
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     resetTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		// 缓存未命中不是故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ri.Nil)
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})}
}

// Call 执行 op，熔断时返回 ErrBreakerOpen 且不调用 op
func (b *CircuitBreaker) Call(ctx context.Context, op func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, op()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrBreakerOpen, b.cb.Name())
	}
	return err
}

func (b *CircuitBreaker) GetState() State {
	return b.cb.State()
}

// GetStats 健康检查用
func (b *CircuitBreaker) GetStats() map[string]interface{} {
	c := b.cb.Counts()
	return map[string]interface{}{
		"name":                 b.cb.Name(),
		"state":                b.cb.State().String(),
		"requests":             c.Requests,
		"consecutive_failures": c.ConsecutiveFailures,
	}
}

// RedisBreaker 连续失败 5 次熔断，30 秒后探测
var RedisBreaker = NewCircuitBreaker("redis_cache", 5, 30*time.Second)
