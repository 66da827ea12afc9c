package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"FinTrack/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// StatusOf 根据错误码映射 HTTP 状态码
func StatusOf(err error) int {
	def, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch def.Code {
	case "CAPTCHA_RATE_LIMITED", "VERIFICATION_SLIDER_REQUIRED", "TOO_MANY_REQUESTS":
		return http.StatusTooManyRequests // 429
	case "VERIFICATION_CODE_EXPIRED", "VERIFICATION_CODE_INVALID", "VERIFICATION_SLIDER_FAILED",
		"INVALID_REQUEST", "INVALID_PHONE", "INVALID_USER_ID",
		"USERNAME_INVALID", "NAME_INVALID", "RECOVERY_EMAIL_INVALID",
		"COUNTRY_NOT_FOUND", "CITY_NOT_FOUND", "ADDRESS_INVALID",
		"CURRENCY_NOT_FOUND", "LANGUAGE_NOT_FOUND", "THEME_INVALID",
		"ONBOARDING_STEP_INVALID":
		return http.StatusBadRequest // 400
	case "UNAUTHORIZED":
		return http.StatusUnauthorized // 401
	case "FORBIDDEN_USER", "CSRF_INVALID":
		return http.StatusForbidden // 403
	case "USER_NOT_FOUND":
		return http.StatusNotFound // 404
	case "USERNAME_TAKEN", "PHONE_ALREADY_REGISTERED", "STEP_ALREADY_COMPLETED", "STEP_PREREQUISITE_MISSING":
		return http.StatusConflict // 409
	case "STATUS_UNAVAILABLE", "SMS_UNAVAILABLE":
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	ErrorWithDetails(ctx, c, err, nil)
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	statusCode := StatusOf(err)

	var code, message string
	if def, ok := errors.As(err); ok {
		code = def.Code
		message = def.Message
	} else {
		// 非业务错误不向客户端暴露内部信息
		code = errors.InternalError.Code
		message = errors.InternalError.Message
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

// Created 返回 201
func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    errors.InvalidRequest.Code,
			Message: err.Error(),
		},
	})
}
