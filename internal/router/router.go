package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/route"

	"FinTrack/internal/handler"
	"FinTrack/internal/middleware"
)

// Register 注册全部路由，observability 为追踪和指标中间件，未开启时为空
func Register(r *route.Engine, observability ...app.HandlerFunc) {
	r.Use(middleware.RecoverMiddleware())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(observability...)
	r.Use(middleware.CORSMiddleware())

	r.GET("/healthz", handler.Healthz)

	v1 := r.Group("/v1")
	if csrf := middleware.CSRFMiddleware(); len(csrf) > 0 {
		v1.Use(csrf...)
		v1.GET("/csrf-token", middleware.CSRFToken)
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/token/refresh", middleware.AuthRateLimitMiddleware(), handler.RefreshToken)
	}

	constant := v1.Group("/constant", middleware.GeneralRateLimitMiddleware())
	{
		constant.GET("/countries", handler.ListCountries)
		constant.GET("/cities", handler.ListCities)
		constant.GET("/currencies", handler.ListCurrencies)
		constant.GET("/languages", handler.ListLanguages)
	}

	onboarding := v1.Group("/onboarding", middleware.AuthMiddleware(), middleware.GeneralRateLimitMiddleware())
	{
		onboarding.GET("/next", handler.GetNextStep)
	}

	user := v1.Group("/user", middleware.AuthMiddleware())
	{
		user.GET("/status/:userId", middleware.GeneralRateLimitMiddleware(), handler.GetUserStatus)

		steps := user.Group("", middleware.StepSubmitRateLimitMiddleware())
		{
			steps.POST("/users", handler.CreateProfile)
			steps.POST("/address", handler.AddAddress)
			steps.POST("/contact", handler.AddContact)
			steps.POST("/settings", handler.AddSettings)
		}

		// 验证码相关按 IP 限流
		contact := user.Group("/contact", middleware.ContactCodeRateLimitMiddleware())
		{
			contact.POST("/verify-slider", handler.VerifySlider)
			contact.POST("/code", handler.SendContactCode)
		}
	}
}
