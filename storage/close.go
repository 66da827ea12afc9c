package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"FinTrack/pkg/logger"
	"FinTrack/storage/database"
	"FinTrack/storage/mq"
	"FinTrack/storage/redis"
)

type closer struct {
	name  string
	close func(context.Context) error
}

// 与 Init 相反的顺序：先停止事件发布，最后释放数据库
var closers = []closer{
	{"rabbitmq", mq.Close},
	{"redis", redis.Close},
	{"postgres", database.Close},
}

// Close 在 15 秒内尽量关闭全部连接，单个失败不影响后续
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	failed := 0
	for _, c := range closers {
		if err := c.close(ctx); err != nil {
			failed++
			logger.Logger.Error("Failed to close storage", zap.String("backend", c.name), zap.Error(err))
		}
	}
	logger.Logger.Info("Storage closed", zap.Int("failed", failed))
}
