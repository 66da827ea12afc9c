package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"FinTrack/config"
	"FinTrack/pkg/logger"
	"FinTrack/pkg/metrics"
	"FinTrack/utils"
)

// SendCaptchaSMS 发送联系方式验证码
func SendCaptchaSMS(ctx context.Context, phone, code string) error {
	return send(ctx, phone, config.Cfg.SMSTemplateCode, map[string]string{"code": code})
}

// SendWelcomeSMS 引导完成后的欢迎短信，未配置模板时跳过
func SendWelcomeSMS(ctx context.Context, phone, displayName string) error {
	templateCode := config.Cfg.SMSWelcomeTemplateCode
	if templateCode == "" {
		logger.Logger.Debug("Welcome SMS template not configured, skipping")
		return nil
	}
	return send(ctx, phone, templateCode, map[string]string{"name": displayName})
}

func send(ctx context.Context, phone, templateCode string, params map[string]string) error {
	paramJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal template param: %w", err)
	}

	start := time.Now()
	resp, err := GetClient().SendSingle(ctx, phone, config.Cfg.SMSSignName, templateCode, string(paramJSON))
	if err != nil {
		metrics.RecordSMSFailed(ctx, templateCode, config.Cfg.SMSProvider, time.Since(start).Seconds())
		return err
	}

	metrics.RecordSMSSent(ctx, templateCode, resp.Provider, time.Since(start).Seconds())
	logger.Logger.Info("SMS sent",
		zap.String("phone", utils.MaskPhone(phone)),
		zap.String("template", templateCode),
		zap.String("message_id", resp.MessageID),
	)
	return nil
}
