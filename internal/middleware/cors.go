package middleware

import (
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/cors"

	"FinTrack/config"
)

// CORSMiddleware 允许 CORS_ALLOWED_ORIGINS 中的来源携带凭据访问，未配置时放行所有来源
func CORSMiddleware() app.HandlerFunc {
	allowed := make(map[string]struct{}, len(config.Cfg.CORSAllowedOrigins))
	for _, o := range config.Cfg.CORSAllowedOrigins {
		allowed[o] = struct{}{}
	}

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if len(allowed) == 0 {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-CSRF-TOKEN", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})
}
