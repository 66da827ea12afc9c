package slider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"FinTrack/config"
	"FinTrack/pkg/logger"
)

var (
	ErrTokenRequired      = errors.New("captcha verify param is required")
	ErrResponseNil        = errors.New("captcha response is nil")
	ErrVerificationFailed = errors.New("captcha verification failed")
	ErrNotInitialized     = errors.New("slider client not initialized")
)

// Client 滑块验证客户端接口
type Client interface {
	// Verify captchaVerifyParam 为前端滑块组件返回的参数，remoteIP 仅用于日志
	Verify(ctx context.Context, captchaVerifyParam, remoteIP, sceneID string) (bool, error)
}

var (
	sliderClient Client
	sliderOnce   sync.Once
	sliderErr    error
)

// Init 初始化滑块验证客户端
func Init() error {
	sliderOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.CaptchaProvider {
		case "aliyun":
			sliderClient, sliderErr = NewAliyunClient()
		case "none":
			sliderClient = &MockClient{}
		default:
			sliderErr = fmt.Errorf("unsupported captcha provider: %s", cfg.CaptchaProvider)
		}

		if sliderErr != nil {
			logger.Logger.Error("Failed to initialize slider client", zap.Error(sliderErr))
			return
		}

		logger.Logger.Info("Slider client initialized successfully",
			zap.String("provider", cfg.CaptchaProvider),
		)
	})

	return sliderErr
}

// SetClient 替换全局客户端
func SetClient(c Client) {
	sliderClient = c
}

type unavailableClient struct{}

func (unavailableClient) Verify(context.Context, string, string, string) (bool, error) {
	return false, ErrNotInitialized
}

// GetClient 未初始化时验证一律失败
func GetClient() Client {
	if sliderClient == nil {
		return unavailableClient{}
	}
	return sliderClient
}
