package middleware

import "fmt"

// Init 构造需要密钥的中间件，须在 token.Init 之后调用
func Init() error {
	if err := initAuthMiddleware(); err != nil {
		return fmt.Errorf("auth middleware: %w", err)
	}
	return nil
}
