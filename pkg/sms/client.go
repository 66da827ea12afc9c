package sms

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"FinTrack/config"
	"FinTrack/pkg/logger"
)

// Client SMS 客户端接口
type Client interface {
	// SendSingle 发送单条短信，templateParam 为 JSON 字符串
	SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) (*SendResponse, error)
}

// SendResponse 短信发送响应
type SendResponse struct {
	MessageID string // BizId
	Code      string
	Message   string
	RequestID string
	Provider  string
	Template  string
}

var (
	smsClient Client
	smsOnce   sync.Once
	smsErr    error
)

// Init 初始化 SMS 客户端
func Init() error {
	smsOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.SMSProvider {
		case "aliyun":
			smsClient, smsErr = NewAliyunClient()
		case "mock":
			smsClient = NewMockClient()
		default:
			smsErr = fmt.Errorf("unsupported SMS provider: %s", cfg.SMSProvider)
		}

		if smsErr != nil {
			logger.Logger.Error("Failed to initialize SMS client", zap.Error(smsErr))
			return
		}

		logger.Logger.Info("SMS client initialized successfully",
			zap.String("provider", cfg.SMSProvider),
		)
	})

	return smsErr
}

// SetClient 替换全局客户端
func SetClient(c Client) {
	smsClient = c
}

// ErrNotInitialized Init 失败或未调用
var ErrNotInitialized = errors.New("sms client not initialized")

type unavailableClient struct{}

func (unavailableClient) SendSingle(context.Context, string, string, string, string) (*SendResponse, error) {
	return nil, ErrNotInitialized
}

// GetClient 未初始化时返回的客户端所有发送均失败
func GetClient() Client {
	if smsClient == nil {
		return unavailableClient{}
	}
	return smsClient
}
