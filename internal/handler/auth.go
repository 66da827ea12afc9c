package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"FinTrack/internal/model/dto"
	"FinTrack/internal/service"
	"FinTrack/pkg/errors"
	"FinTrack/pkg/response"
)

// RefreshToken 刷新访问令牌
// POST /v1/auth/token/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	if req.RefreshToken == "" {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	data, err := service.Auth().RefreshToken(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, data)
}
