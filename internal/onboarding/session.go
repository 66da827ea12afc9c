package onboarding

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"FinTrack/pkg/logger"
	"FinTrack/pkg/metrics"
)

// StatusSource 获取用户的完成情况
type StatusSource interface {
	FetchCompletionState(ctx context.Context, userID string) (CompletionState, error)
}

// StatusSourceFunc 函数适配 StatusSource
type StatusSourceFunc func(ctx context.Context, userID string) (CompletionState, error)

func (f StatusSourceFunc) FetchCompletionState(ctx context.Context, userID string) (CompletionState, error) {
	return f(ctx, userID)
}

// Session 单个用户在客户端的引导会话。
// 每次访问或刷新都会递增代数并取消上一次未完成的查询，
// 过期代数的查询结果直接丢弃。
type Session struct {
	userID string
	source StatusSource
	effect *NavigationEffect

	mu         sync.Mutex
	path       string
	generation uint64
	cancel     context.CancelFunc
}

// NewSession 创建会话
func NewSession(userID string, source StatusSource, effect *NavigationEffect) *Session {
	return &Session{
		userID: userID,
		source: source,
		effect: effect,
	}
}

// Visit 进入新路径并评估一次
func (s *Session) Visit(ctx context.Context, path string) Outcome {
	gen, fetchCtx := s.begin(ctx, &path)
	return s.run(ctx, fetchCtx, gen)
}

// Refresh 状态可能已变化（如提交了某一步），重新查询当前路径
func (s *Session) Refresh(ctx context.Context) Outcome {
	gen, fetchCtx := s.begin(ctx, nil)
	return s.run(ctx, fetchCtx, gen)
}

// Path 当前路径
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Generation 当前代数
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Close 取消进行中的查询
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) begin(ctx context.Context, path *string) (uint64, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if path != nil {
		s.path = *path
	}
	s.generation++

	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return s.generation, fetchCtx
}

func (s *Session) run(ctx, fetchCtx context.Context, gen uint64) Outcome {
	start := time.Now()
	state, err := s.source.FetchCompletionState(fetchCtx, s.userID)
	metrics.RecordStatusFetch(ctx, "session", time.Since(start).Seconds(), err == nil)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		logger.Logger.Debug("Discarding stale onboarding status",
			zap.String("user_id", s.userID),
			zap.Uint64("generation", gen),
		)
		return Outcome{Reason: ReasonStale}
	}
	path := s.path
	s.mu.Unlock()

	result := Succeeded(state)
	if err != nil {
		result = Failed(err)
	}

	out := s.effect.observe(ctx, result, path, s.commitFor(gen))
	if out.Reason == ReasonNavigateFailed {
		s.mu.Lock()
		if gen == s.generation && s.path == out.Decision.Path {
			s.path = path
		}
		s.mu.Unlock()
	}
	return out
}

// commitFor 导航前确认代数未变并写入目标路径，两者在同一把锁内完成
func (s *Session) commitFor(gen uint64) func(Decision) bool {
	return func(d Decision) bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation {
			return false
		}
		s.path = d.Path
		return true
	}
}
