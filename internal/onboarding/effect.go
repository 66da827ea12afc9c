package onboarding

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"FinTrack/pkg/logger"
	"FinTrack/pkg/metrics"
)

// Navigator 执行实际的页面跳转
type Navigator interface {
	GoTo(ctx context.Context, step Step, path string) error
}

// NavigatorFunc 函数适配 Navigator
type NavigatorFunc func(ctx context.Context, step Step, path string) error

func (f NavigatorFunc) GoTo(ctx context.Context, step Step, path string) error {
	return f(ctx, step, path)
}

// Reason Observe 的处理结果
type Reason string

const (
	ReasonEvaluated      Reason = "evaluated"
	ReasonPending        Reason = "pending"
	ReasonFetchFailed    Reason = "fetch_failed"
	ReasonUnchanged      Reason = "unchanged"
	ReasonStale          Reason = "stale"
	ReasonNavigateFailed Reason = "navigate_failed"
)

// Outcome 一次观察的结果
type Outcome struct {
	Decision Decision
	Reason   Reason
	// Err 仅用于上报，不会向调用方抛出
	Err error
}

// Navigated 是否发生了导航
func (o Outcome) Navigated() bool {
	return o.Reason == ReasonEvaluated && o.Decision.Navigate()
}

type effectInput struct {
	state CompletionState
	path  string
}

// NavigationEffect 监听状态和路径变化，输入变化时评估一次并最多导航一次
type NavigationEffect struct {
	sequencer *Sequencer
	navigator Navigator

	mu   sync.Mutex
	last *effectInput
}

// NewNavigationEffect 创建 NavigationEffect
func NewNavigationEffect(sequencer *Sequencer, navigator Navigator) *NavigationEffect {
	return &NavigationEffect{
		sequencer: sequencer,
		navigator: navigator,
	}
}

// Observe 处理一次状态查询结果。
// 查询未完成或失败时不导航；同一输入只评估一次；导航失败会清除记忆以便重试。
// 调用 GoTo 时不持有锁，Navigator 可以在跳转中再次触发 Observe。
func (e *NavigationEffect) Observe(ctx context.Context, result Result, path string) Outcome {
	return e.observe(ctx, result, path, nil)
}

// observe commit 在 GoTo 之前调用，返回 false 表示结果已被更新的查询取代
func (e *NavigationEffect) observe(ctx context.Context, result Result, path string, commit func(Decision) bool) Outcome {
	switch result.Status {
	case StatusPending:
		return e.report(ctx, Outcome{Reason: ReasonPending, Err: ErrDataUnavailable})
	case StatusFailed:
		logger.Logger.Warn("Onboarding status fetch failed, staying on current page",
			zap.String("path", path),
			zap.Error(result.Err),
		)
		return e.report(ctx, Outcome{Reason: ReasonFetchFailed, Err: result.Err})
	}

	input := &effectInput{state: result.State, path: path}

	e.mu.Lock()
	if e.last != nil && *e.last == *input {
		e.mu.Unlock()
		return Outcome{Reason: ReasonUnchanged}
	}
	e.last = input
	e.mu.Unlock()

	out := Outcome{Reason: ReasonEvaluated}
	if !result.State.Valid() {
		out.Err = ErrInvalidState
		logger.Logger.Warn("Onboarding completion state violates step order",
			zap.Any("state", result.State),
			zap.Bool("strict", e.sequencer.Strict()),
		)
	}

	out.Decision = e.sequencer.Decide(result.State, path)
	if !out.Decision.Navigate() {
		return e.report(ctx, out)
	}

	if commit != nil && !commit(out.Decision) {
		e.forget(input)
		logger.Logger.Debug("Skipping navigation for superseded status",
			zap.String("path", path),
			zap.String("target", out.Decision.Target.String()),
		)
		return e.report(ctx, Outcome{Decision: out.Decision, Reason: ReasonStale})
	}

	if err := e.navigator.GoTo(ctx, out.Decision.Target, out.Decision.Path); err != nil {
		e.forget(input)
		logger.Ctx(ctx).Error("Onboarding navigation failed",
			zap.String("target", out.Decision.Target.String()),
			zap.String("path", out.Decision.Path),
			zap.Error(err),
		)
		return e.report(ctx, Outcome{Decision: out.Decision, Reason: ReasonNavigateFailed, Err: err})
	}

	logger.Logger.Info("Onboarding navigation",
		zap.String("from", path),
		zap.String("target", out.Decision.Target.String()),
		zap.String("to", out.Decision.Path),
	)
	return e.report(ctx, out)
}

// forget 仅当记忆仍是 input 时清除，期间的新输入保持不变
func (e *NavigationEffect) forget(input *effectInput) {
	e.mu.Lock()
	if e.last == input {
		e.last = nil
	}
	e.mu.Unlock()
}

// Reset 清除记忆的上一次输入
func (e *NavigationEffect) Reset() {
	e.mu.Lock()
	e.last = nil
	e.mu.Unlock()
}

func (e *NavigationEffect) report(ctx context.Context, out Outcome) Outcome {
	metrics.RecordDecision(ctx, out.Decision.Target.String(), string(out.Reason))
	return out
}
