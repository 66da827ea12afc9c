package slider

import (
	"context"
)

// MockClient 开发环境使用，参数非空即通过
type MockClient struct{}

func (m *MockClient) Verify(ctx context.Context, captchaVerifyParam, remoteIP, sceneID string) (bool, error) {
	if captchaVerifyParam == "" {
		return false, ErrTokenRequired
	}
	return true, nil
}
