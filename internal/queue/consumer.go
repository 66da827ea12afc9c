package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"FinTrack/internal/cache"
	"FinTrack/internal/model"
	"FinTrack/pkg/errors"
	"FinTrack/pkg/logger"
	"FinTrack/storage/mq"
)

// StatusInvalidator 删除注册状态缓存
type StatusInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// WelcomeSender 发送欢迎短信
type WelcomeSender interface {
	SendWelcome(ctx context.Context, userID int64) error
}

const processingTTL = 10 * time.Minute

// StatusInvalidateHandler 多实例部署时同步失效其他实例写入的缓存
func StatusInvalidateHandler(inv StatusInvalidator) mq.MessageHandler {
	return func(ctx context.Context, body []byte) error {
		event, err := decode(body)
		if err != nil {
			return err
		}

		if err := inv.Invalidate(ctx, strconv.FormatInt(event.UserID, 10)); err != nil {
			return fmt.Errorf("failed to invalidate status: %w", err)
		}

		logger.Logger.Debug("Registration status invalidated",
			zap.String("message_id", event.MessageID),
			zap.Int64("user_id", event.UserID),
			zap.String("step", event.Step),
		)
		return nil
	}
}

// WelcomeHandler 同一消息只发送一次
func WelcomeHandler(sender WelcomeSender) mq.MessageHandler {
	return func(ctx context.Context, body []byte) error {
		event, err := decode(body)
		if err != nil {
			return err
		}

		first, err := cache.TryMarkMessageProcessing(ctx, event.MessageID, processingTTL)
		if err != nil {
			return err
		}
		if !first {
			logger.Logger.Info("Message already processed or being processed, skipping",
				zap.String("message_id", event.MessageID),
			)
			return errors.Skip(fmt.Sprintf("message %s already processed", event.MessageID))
		}

		if err := sender.SendWelcome(ctx, event.UserID); err != nil {
			if uerr := cache.UnmarkMessageProcessing(ctx, event.MessageID); uerr != nil {
				logger.Logger.Warn("Failed to unmark message", zap.String("message_id", event.MessageID), zap.Error(uerr))
			}
			return fmt.Errorf("failed to send welcome: %w", err)
		}

		if err := cache.MarkMessageProcessed(ctx, event.MessageID, 0); err != nil {
			logger.Logger.Warn("Failed to mark message processed",
				zap.String("message_id", event.MessageID),
				zap.Error(err),
			)
		}
		return nil
	}
}

// decode 无法解析的消息直接丢弃
func decode(body []byte) (*model.OnboardingEvent, error) {
	var event model.OnboardingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, errors.Skip(fmt.Sprintf("malformed message: %v", err))
	}
	if event.MessageID == "" || event.UserID <= 0 {
		return nil, errors.Skip("message without id or user")
	}
	return &event, nil
}

// StartAllConsumers 阻塞直到所有消费者退出
func StartAllConsumers(ctx context.Context, inv StatusInvalidator, sender WelcomeSender) {
	var wg sync.WaitGroup

	consumers := []mq.ConsumeOptions{
		{
			Queue:         mq.QueueStatusInvalidate,
			ConsumerTag:   "status_invalidate_consumer",
			PrefetchCount: 50,
			Handler:       StatusInvalidateHandler(inv),
		},
		{
			Queue:         mq.QueueWelcome,
			ConsumerTag:   "welcome_consumer",
			PrefetchCount: 10,
			Handler:       WelcomeHandler(sender),
		},
	}

	for _, opts := range consumers {
		wg.Add(1)
		go func(opts mq.ConsumeOptions) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer", zap.String("queue", opts.Queue))

			if err := mq.Consume(ctx, opts); err != nil && ctx.Err() == nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("queue", opts.Queue),
					zap.Error(err),
				)
			}
		}(opts)
	}

	wg.Wait()

	logger.Logger.Info("All consumers stopped")
}
