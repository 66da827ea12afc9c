package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"FinTrack/internal/cache"
	"FinTrack/internal/model"
	"FinTrack/internal/model/dto"
	"FinTrack/internal/onboarding"
	"FinTrack/internal/repository"
	pkgerrors "FinTrack/pkg/errors"
	"FinTrack/pkg/logger"
	"FinTrack/pkg/metrics"
	"FinTrack/storage/database"
)

var (
	registrationService *RegistrationService
	registrationOnce    sync.Once
)

// Registration 注册状态服务单例
func Registration() *RegistrationService {
	registrationOnce.Do(func() {
		registrationService = NewRegistrationService(
			repository.NewGormStore(database.DB()),
			cache.RedisBreaker,
		)
	})
	return registrationService
}

// SetRegistration 替换单例，供测试和 worker 装配使用
func SetRegistration(s *RegistrationService) {
	registrationOnce.Do(func() {})
	registrationService = s
}

// RegistrationService 读取四个引导步骤的完成情况。
// Redis 作为读穿缓存，熔断或出错时直接读库；同一用户的并发请求合并为一次查询。
type RegistrationService struct {
	store   repository.Store
	breaker *cache.CircuitBreaker
	group   singleflight.Group
}

func NewRegistrationService(store repository.Store, breaker *cache.CircuitBreaker) *RegistrationService {
	return &RegistrationService{store: store, breaker: breaker}
}

// Status 返回用户的完成情况，不存在的用户四项均为 false
func (s *RegistrationService) Status(ctx context.Context, userID string) (*model.Completion, error) {
	publicID, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	if c, ok := s.cached(ctx, userID); ok {
		return c, nil
	}

	v, err, shared := s.group.Do(userID, func() (interface{}, error) {
		// 共享查询不随首个调用方取消
		ctx := context.WithoutCancel(ctx)
		start := time.Now()
		c, err := s.store.Completion(ctx, publicID)
		metrics.RecordStatusFetch(ctx, "database", time.Since(start).Seconds(), err == nil)
		if err != nil {
			return nil, err
		}

		if err := s.breaker.Call(ctx, func() error { return cache.SetStatus(ctx, userID, c) }); err != nil {
			logger.Logger.Warn("Failed to cache registration status",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		return c, nil
	})
	if err != nil {
		logger.Ctx(ctx).Error("Failed to load registration status",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to load registration status: %w", err)
	}

	if shared {
		logger.Logger.Debug("Registration status query shared", zap.String("user_id", userID))
	}

	c := *v.(*model.Completion)
	return &c, nil
}

func (s *RegistrationService) cached(ctx context.Context, userID string) (*model.Completion, bool) {
	var (
		c      *model.Completion
		lookup cache.Lookup
	)
	err := s.breaker.Call(ctx, func() error {
		var err error
		c, lookup, err = cache.GetStatus(ctx, userID)
		return err
	})

	switch {
	case err != nil:
		metrics.RecordStatusCache(ctx, "error")
		logger.Logger.Warn("Registration status cache unavailable, falling back to database",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, false
	case lookup == cache.Hit:
		metrics.RecordStatusCache(ctx, "hit")
		return c, true
	default:
		metrics.RecordStatusCache(ctx, "miss")
		return nil, false
	}
}

// Invalidate 删除缓存，熔断时跳过，等待 TTL 自然过期
func (s *RegistrationService) Invalidate(ctx context.Context, userID string) error {
	err := s.breaker.Call(ctx, func() error { return cache.InvalidateStatus(ctx, userID) })
	if err != nil {
		logger.Logger.Warn("Failed to invalidate registration status",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
	return err
}

// GetUserStatus GET /v1/user/status/:userId
func (s *RegistrationService) GetUserStatus(ctx context.Context, userID string) (*dto.UserStatusData, error) {
	c, err := s.Status(ctx, userID)
	if err != nil {
		if _, ok := pkgerrors.As(err); ok {
			return nil, err
		}
		return nil, pkgerrors.StatusUnavailable
	}
	data := statusData(ToCompletionState(c))
	return &data, nil
}

// FetchCompletionState 实现 onboarding.StatusSource，参数错误不重试
func (s *RegistrationService) FetchCompletionState(ctx context.Context, userID string) (onboarding.CompletionState, error) {
	c, err := s.Status(ctx, userID)
	if err != nil {
		if _, ok := pkgerrors.As(err); ok {
			return onboarding.CompletionState{}, onboarding.PermanentError(err)
		}
		return onboarding.CompletionState{}, err
	}
	return ToCompletionState(c), nil
}

// ToCompletionState 数据库标记转换为引导状态
func ToCompletionState(c *model.Completion) onboarding.CompletionState {
	if c == nil {
		return onboarding.CompletionState{}
	}
	return onboarding.CompletionState{
		HasProfile:  c.IsUser,
		HasAddress:  c.IsAddress,
		HasContact:  c.IsContact,
		HasSettings: c.IsSettings,
	}
}

func statusData(state onboarding.CompletionState) dto.UserStatusData {
	return dto.UserStatusData{
		IsUser:     state.HasProfile,
		IsAddress:  state.HasAddress,
		IsContact:  state.HasContact,
		IsSettings: state.HasSettings,
		NextStep:   state.NextStep().String(),
	}
}

func parseUserID(userID string) (int64, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.InvalidUserID
	}
	return id, nil
}
