package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"FinTrack/config"
	"FinTrack/internal/model/dto"
	"FinTrack/internal/onboarding"
	"FinTrack/pkg/logger"
	"FinTrack/pkg/metrics"
)

const (
	ActionNavigate = "navigate"
	ActionNone     = "none"
)

var (
	onboardingService *OnboardingService
	onboardingOnce    sync.Once
)

// Onboarding 使用配置中的路由和重试策略
func Onboarding() *OnboardingService {
	onboardingOnce.Do(func() {
		cfg := config.Cfg
		var opts []onboarding.Option
		if cfg.OnboardingStrictOrder {
			opts = append(opts, onboarding.WithStrictOrder())
		}

		onboardingService = NewOnboardingService(
			onboarding.NewRetryingSource(Registration(), RetryPolicyFromConfig(cfg)),
			onboarding.NewSequencer(RoutesFromConfig(cfg), opts...),
		)
	})
	return onboardingService
}

// SetOnboarding 测试注入
func SetOnboarding(s *OnboardingService) {
	onboardingOnce.Do(func() {})
	onboardingService = s
}

// RoutesFromConfig 引导页面路径
func RoutesFromConfig(cfg config.Config) onboarding.Routes {
	return onboarding.Routes{
		Profile:     cfg.OnboardingProfilePath,
		Address:     cfg.OnboardingAddressPath,
		Contact:     cfg.OnboardingContactPath,
		Settings:    cfg.OnboardingSettingsPath,
		MainLanding: cfg.MainLandingPath,
		Section:     cfg.OnboardingSection,
	}
}

// RetryPolicyFromConfig 状态查询重试策略
func RetryPolicyFromConfig(cfg config.Config) onboarding.RetryPolicy {
	return onboarding.RetryPolicy{
		MaxAttempts:     cfg.StatusFetchMaxAttempts,
		InitialInterval: cfg.StatusFetchInitial(),
		MaxInterval:     cfg.StatusFetchMax(),
	}
}

type OnboardingService struct {
	source    onboarding.StatusSource
	sequencer *onboarding.Sequencer
}

func NewOnboardingService(source onboarding.StatusSource, sequencer *onboarding.Sequencer) *OnboardingService {
	return &OnboardingService{source: source, sequencer: sequencer}
}

// NextStep 对当前路径给出导航决策。
// 状态获取失败时返回 action=none，不把错误暴露给调用方。
func (s *OnboardingService) NextStep(ctx context.Context, userID, currentPath string) (*dto.NextStepData, error) {
	if _, err := parseUserID(userID); err != nil {
		return nil, err
	}

	data := &dto.NextStepData{Action: ActionNone, CurrentPath: currentPath}

	state, err := s.source.FetchCompletionState(ctx, userID)
	if err != nil {
		logger.Logger.Warn("Registration status unavailable, no navigation",
			zap.String("user_id", userID),
			zap.String("path", currentPath),
			zap.Error(err),
		)
		data.Reason = string(onboarding.ReasonFetchFailed)
		metrics.RecordDecision(ctx, onboarding.StepNone.String(), data.Reason)
		return data, nil
	}

	if !state.Valid() {
		logger.Logger.Warn("Registration status violates step order",
			zap.String("user_id", userID),
			zap.Any("state", state),
			zap.Bool("strict", s.sequencer.Strict()),
		)
	}

	decision := s.sequencer.Decide(state, currentPath)
	data.Reason = string(onboarding.ReasonEvaluated)
	data.Status = statusData(state)
	if decision.Navigate() {
		data.Action = ActionNavigate
		data.Target = decision.Target.String()
		data.Path = decision.Path
	}

	metrics.RecordDecision(ctx, decision.Target.String(), data.Reason)
	logger.Logger.Debug("Onboarding decision",
		zap.String("user_id", userID),
		zap.String("path", currentPath),
		zap.String("action", data.Action),
		zap.String("target", data.Target),
	)
	return data, nil
}
