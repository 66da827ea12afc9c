package slider

import (
	"context"
	"fmt"

	captcha "github.com/alibabacloud-go/captcha-20230305/client"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	credential "github.com/aliyun/credentials-go/credentials"
	"go.uber.org/zap"

	"FinTrack/config"
	"FinTrack/pkg/logger"
)

// AliyunClient 阿里云智能验证码 2023-03-05，凭据走默认凭据链
type AliyunClient struct {
	client  *captcha.Client
	runtime *util.RuntimeOptions
}

func NewAliyunClient() (*AliyunClient, error) {
	cred, err := credential.NewCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun credential: %w", err)
	}

	client, err := captcha.NewClient(&openapi.Config{
		Credential: cred,
		Endpoint:   tea.String(config.Cfg.CaptchaEndpoint),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create captcha client: %w", err)
	}

	return &AliyunClient{
		client: client,
		runtime: &util.RuntimeOptions{
			ConnectTimeout: tea.Int(3000),
			ReadTimeout:    tea.Int(5000),
		},
	}, nil
}

// Verify remoteIP 只用于日志
func (c *AliyunClient) Verify(ctx context.Context, captchaVerifyParam, remoteIP, scene string) (bool, error) {
	if captchaVerifyParam == "" {
		return false, ErrTokenRequired
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	resp, err := c.client.VerifyIntelligentCaptchaWithOptions(&captcha.VerifyIntelligentCaptchaRequest{
		CaptchaVerifyParam: tea.String(captchaVerifyParam),
		SceneId:            tea.String(scene),
	}, c.runtime)
	if err != nil {
		return false, fmt.Errorf("failed to verify captcha: %w", err)
	}
	if resp == nil || resp.Body == nil {
		return false, ErrResponseNil
	}

	ok, err := verdict(resp.Body)
	if !ok {
		logger.Logger.Info("Slider rejected",
			zap.String("scene", scene),
			zap.String("remote_ip", remoteIP),
			zap.Error(err),
		)
	}
	return ok, err
}

// verdict 结果为 true 即通过；接口报错码时带上错误码
func verdict(body *captcha.VerifyIntelligentCaptchaResponseBody) (bool, error) {
	if body.Result != nil && tea.BoolValue(body.Result.VerifyResult) {
		return true, nil
	}

	code := tea.StringValue(body.Code)
	if code != "" && code != "200" {
		return false, fmt.Errorf("%w: %s %s", ErrVerificationFailed, code, tea.StringValue(body.Message))
	}
	return false, ErrVerificationFailed
}
