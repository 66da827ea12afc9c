package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"FinTrack/internal/middleware"
	"FinTrack/internal/service"
	"FinTrack/pkg/errors"
	"FinTrack/pkg/response"
)

// GetNextStep 当前用户在 path 页面时的导航决策
// GET /v1/onboarding/next?path=/onboarding/profile
func GetNextStep(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	path := c.Query("path")
	if path == "" {
		response.Error(ctx, c, errors.InvalidRequest)
		return
	}

	data, err := service.Onboarding().NextStep(ctx, userID, path)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, data)
}
