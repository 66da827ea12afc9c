package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"FinTrack/internal/middleware"
	"FinTrack/internal/model/dto"
	"FinTrack/internal/service"
	"FinTrack/pkg/response"
)

// GetUserStatus 获取注册状态
// GET /v1/user/status/:userId
func GetUserStatus(ctx context.Context, c *app.RequestContext) {
	userID := c.Param("userId")
	if !middleware.RequireUser(ctx, c, userID) {
		return
	}

	data, err := service.Registration().GetUserStatus(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, data)
}

// CreateProfile 创建用户资料
// POST /v1/user/users
func CreateProfile(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateProfileRequest
	if !bindForUser(ctx, c, &req, &req.UserID) {
		return
	}

	data, err := service.Steps().CreateProfile(ctx, req.UserID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, data)
}

// AddAddress 添加地址
// POST /v1/user/address
func AddAddress(ctx context.Context, c *app.RequestContext) {
	var req dto.AddAddressRequest
	if !bindForUser(ctx, c, &req, &req.UserID) {
		return
	}

	data, err := service.Steps().AddAddress(ctx, req.UserID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, data)
}

// VerifySlider 滑块验证
// POST /v1/user/contact/verify-slider
func VerifySlider(ctx context.Context, c *app.RequestContext) {
	var req dto.VerifySliderRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, err := service.Steps().VerifySlider(ctx, req, c.ClientIP())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, data)
}

// SendContactCode 发送手机验证码
// POST /v1/user/contact/code
func SendContactCode(ctx context.Context, c *app.RequestContext) {
	var req dto.SendContactCodeRequest
	if !bindForUser(ctx, c, &req, &req.UserID) {
		return
	}

	data, err := service.Steps().SendContactCode(ctx, req.UserID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, data)
}

// AddContact 添加联系方式
// POST /v1/user/contact
func AddContact(ctx context.Context, c *app.RequestContext) {
	var req dto.AddContactRequest
	if !bindForUser(ctx, c, &req, &req.UserID) {
		return
	}

	data, err := service.Steps().AddContact(ctx, req.UserID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, data)
}

// AddSettings 偏好设置
// POST /v1/user/settings
func AddSettings(ctx context.Context, c *app.RequestContext) {
	var req dto.AddSettingsRequest
	if !bindForUser(ctx, c, &req, &req.UserID) {
		return
	}

	data, err := service.Steps().AddSettings(ctx, req.UserID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, data)
}

// bindForUser 绑定请求体；userId 为空时取当前用户，不为空时必须一致
func bindForUser(ctx context.Context, c *app.RequestContext, req interface{}, userID *string) bool {
	if err := c.BindAndValidate(req); err != nil {
		response.BindError(ctx, c, err)
		return false
	}

	if *userID == "" {
		uid, _ := middleware.GetUserID(ctx, c)
		*userID = uid
	}
	return middleware.RequireUser(ctx, c, *userID)
}
