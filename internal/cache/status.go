package cache

import (
	"context"

	"FinTrack/internal/model"
)

// 注册状态缓存：fint:user:status:{publicID}

// GetStatus 读取注册状态缓存
func GetStatus(ctx context.Context, userID string) (*model.Completion, Lookup, error) {
	var c model.Completion
	lookup, err := StatusProtectedCache.Get(ctx, userID, &c)
	if err != nil || lookup != Hit {
		return nil, lookup, err
	}
	return &c, Hit, nil
}

// SetStatus 写入注册状态
func SetStatus(ctx context.Context, userID string, c *model.Completion) error {
	return StatusProtectedCache.Set(ctx, userID, c)
}

// InvalidateStatus 步骤提交后使缓存失效
func InvalidateStatus(ctx context.Context, userIDs ...string) error {
	return StatusProtectedCache.BatchDelete(ctx, userIDs)
}
