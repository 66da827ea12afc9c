package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	openapiutil "github.com/alibabacloud-go/openapi-util/service"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	credential "github.com/aliyun/credentials-go/credentials"
	"go.uber.org/zap"

	"FinTrack/pkg/logger"
	"FinTrack/utils"
)

var (
	ErrSignNameRequired     = errors.New("sms sign name is required")
	ErrTemplateCodeRequired = errors.New("sms template code is required")
	// ErrNonRetryable 配置或参数错误，重试无意义
	ErrNonRetryable = errors.New("sms non-retryable error")
)

type AliyunClient struct {
	client *openapi.Client
}

// NewAliyunClient 凭据从 ALIBABA_CLOUD_ACCESS_KEY_ID / ALIBABA_CLOUD_ACCESS_KEY_SECRET 读取
func NewAliyunClient() (*AliyunClient, error) {
	cred, err := credential.NewCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun credential: %w", err)
	}

	client, err := openapi.NewClient(&openapi.Config{
		Credential: cred,
		Endpoint:   tea.String("dysmsapi.aliyuncs.com"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun client: %w", err)
	}

	return &AliyunClient{client: client}, nil
}

func (c *AliyunClient) createApiInfo(action string) *openapi.Params {
	return &openapi.Params{
		Action:      tea.String(action),
		Version:     tea.String("2017-05-25"),
		Protocol:    tea.String("HTTPS"),
		Method:      tea.String("POST"),
		AuthType:    tea.String("AK"),
		Style:       tea.String("RPC"),
		Pathname:    tea.String("/"),
		ReqBodyType: tea.String("json"),
		BodyType:    tea.String("json"),
	}
}

// SendSingle 国际号码以不带 + 的区号开头提交
func (c *AliyunClient) SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) (*SendResponse, error) {
	if signName == "" {
		return nil, ErrSignNameRequired
	}
	if templateCode == "" {
		return nil, ErrTemplateCodeRequired
	}

	number := strings.TrimPrefix(utils.NormalizePhone(phone), "+")
	request := &openapi.OpenApiRequest{
		Query: openapiutil.Query(map[string]interface{}{
			"PhoneNumbers":  tea.String(number),
			"SignName":      tea.String(signName),
			"TemplateCode":  tea.String(templateCode),
			"TemplateParam": tea.String(templateParam),
		}),
	}

	resp, err := c.client.CallApi(c.createApiInfo("SendSms"), request, &util.RuntimeOptions{})
	if err != nil {
		logger.Logger.Error("Failed to send SMS",
			zap.String("phone", utils.MaskPhone(phone)),
			zap.String("template", templateCode),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send SMS: %w", err)
	}

	return parseSendResponse(resp, templateCode)
}

func parseSendResponse(resp map[string]interface{}, templateCode string) (*SendResponse, error) {
	if raw, ok := resp["statusCode"]; ok && raw != nil {
		statusCode, err := parseStatusCode(raw)
		if err != nil {
			return nil, err
		}
		if statusCode != 200 {
			logger.Logger.Error("SMS API returned error",
				zap.Int("status_code", statusCode),
				zap.Any("body", resp["body"]),
			)
			return nil, fmt.Errorf("SMS API error: statusCode=%d", statusCode)
		}
	}

	response := &SendResponse{Provider: "aliyun", Template: templateCode}
	if resp["body"] == nil {
		return response, nil
	}

	bodyBytes, err := json.Marshal(resp["body"])
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response body: %w", err)
	}

	var body struct {
		BizId     string
		Code      string
		Message   string
		RequestId string
	}
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	response.MessageID = body.BizId
	response.Code = body.Code
	response.Message = body.Message
	response.RequestID = body.RequestId

	if response.Code != "" && response.Code != "OK" {
		logger.Logger.Error("SMS send failed",
			zap.String("code", response.Code),
			zap.String("message", response.Message),
			zap.String("request_id", response.RequestID),
		)
		if isNonRetryableError(response.Code) {
			return nil, fmt.Errorf("%w: %s - %s", ErrNonRetryable, response.Code, response.Message)
		}
		return nil, fmt.Errorf("SMS send failed: %s - %s", response.Code, response.Message)
	}

	return response, nil
}

func parseStatusCode(v interface{}) (int, error) {
	switch s := v.(type) {
	case int:
		return s, nil
	case int32:
		return int(s), nil
	case int64:
		return int(s), nil
	case float64:
		return int(s), nil
	case *int:
		if s != nil {
			return *s, nil
		}
	case string:
		return strconv.Atoi(s)
	}
	return 0, fmt.Errorf("unexpected statusCode type %T", v)
}

// isNonRetryableError 签名、模板、号码类错误
func isNonRetryableError(code string) bool {
	switch code {
	case "isv.SMS_SIGNATURE_ILLEGAL",
		"isv.SMS_TEMPLATE_ILLEGAL",
		"isv.TEMPLATE_MISSING_PARAMETERS",
		"isv.INVALID_PARAMETERS",
		"isv.MOBILE_NUMBER_ILLEGAL",
		"isv.SMS_SIGN_ILLEGAL",
		"isv.PARAM_LENGTH_LIMIT":
		return true
	}
	return false
}
