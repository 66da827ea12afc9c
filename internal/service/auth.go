package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"FinTrack/internal/cache"
	"FinTrack/internal/model/dto"
	pkgerrors "FinTrack/pkg/errors"
	"FinTrack/pkg/logger"
	"FinTrack/pkg/token"
)

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = &AuthService{}
	})
	return authService
}

// AuthService 只负责刷新令牌，登录由认证服务完成
type AuthService struct{}

// RefreshToken 用 refresh token 换取新的令牌对，旧 refresh token 随即作废
func (s *AuthService) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (*dto.TokenPairData, error) {
	userID, err := token.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		logger.Logger.Warn("Invalid refresh token", zap.Error(err))
		return nil, pkgerrors.Unauthorized
	}

	usable, err := cache.RefreshTokenUsable(ctx, userID, req.RefreshToken)
	if err != nil {
		logger.Ctx(ctx).Error("Failed to check refresh token", zap.String("user_id", userID), zap.Error(err))
		return nil, pkgerrors.InternalError
	}
	if !usable {
		logger.Logger.Warn("Refresh token reused", zap.String("user_id", userID))
		return nil, pkgerrors.Unauthorized
	}

	pair, err := token.GenerateTokenPair(userID)
	if err != nil {
		logger.Ctx(ctx).Error("Failed to generate token pair", zap.String("user_id", userID), zap.Error(err))
		return nil, pkgerrors.InternalError
	}

	if err := cache.SetRefreshToken(ctx, userID, pair.RefreshToken); err != nil {
		logger.Logger.Warn("Failed to store refresh token", zap.String("user_id", userID), zap.Error(err))
	}

	return &dto.TokenPairData{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
