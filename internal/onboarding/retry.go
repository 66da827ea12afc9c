package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"FinTrack/pkg/logger"
	"FinTrack/pkg/metrics"
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// PermanentError 标记不可重试的错误，如参数错误、未授权、用户不存在
func PermanentError(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent 是否为不可重试的错误
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// RetryPolicy 状态查询重试策略
type RetryPolicy struct {
	// MaxAttempts 总尝试次数（含首次）
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy 默认重试策略
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// RetryingSource 为 StatusSource 增加指数退避重试
type RetryingSource struct {
	source StatusSource
	policy RetryPolicy
}

// NewRetryingSource 包装 source
func NewRetryingSource(source StatusSource, policy RetryPolicy) *RetryingSource {
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = 1
	}
	return &RetryingSource{source: source, policy: policy}
}

// FetchCompletionState 失败时按策略重试，超过次数后返回 ErrFetchFailed
func (r *RetryingSource) FetchCompletionState(ctx context.Context, userID string) (CompletionState, error) {
	b := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		b.InitialInterval = r.policy.InitialInterval
	}
	if r.policy.MaxInterval > 0 {
		b.MaxInterval = r.policy.MaxInterval
	}

	attempt := 0
	op := func() (CompletionState, error) {
		attempt++
		state, err := r.source.FetchCompletionState(ctx, userID)
		if err != nil && IsPermanent(err) {
			return state, backoff.Permanent(err)
		}
		return state, err
	}

	notify := func(err error, next time.Duration) {
		logger.Logger.Warn("Retrying onboarding status fetch",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Duration("next_in", next),
			zap.Error(err),
		)
		metrics.RecordStatusFetchRetry(ctx, attempt)
	}

	state, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.policy.MaxAttempts),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return CompletionState{}, fmt.Errorf("%w after %d attempt(s): %w", ErrFetchFailed, attempt, err)
	}
	return state, nil
}
