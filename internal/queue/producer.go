package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"FinTrack/internal/model"
	"FinTrack/pkg/logger"
	"FinTrack/pkg/snowflake"
	"FinTrack/storage/mq"
)

// PublishFunc 底层发布函数，默认为 mq.PublishMessage
type PublishFunc func(ctx context.Context, exchange, routingKey, messageID string, body interface{}) error

// Producer 发布引导事件
type Producer struct {
	publish PublishFunc
	now     func() time.Time
}

func NewProducer(publish PublishFunc) *Producer {
	return &Producer{publish: publish, now: time.Now}
}

// DefaultProducer 使用 RabbitMQ 发布
func DefaultProducer() *Producer {
	return NewProducer(mq.PublishMessage)
}

// PublishStepCompleted 路由键 onboarding.step.<step>
func (p *Producer) PublishStepCompleted(ctx context.Context, userID int64, step string) error {
	return p.emit(ctx, mq.StepRoutingKey(step), model.OnboardingEvent{
		EventType: model.EventStepCompleted,
		UserID:    userID,
		Step:      step,
	})
}

// PublishOnboardingCompleted 四步全部完成
func (p *Producer) PublishOnboardingCompleted(ctx context.Context, userID int64) error {
	return p.emit(ctx, mq.RoutingKeyOnboardingCompleted, model.OnboardingEvent{
		EventType: model.EventOnboardingCompleted,
		UserID:    userID,
	})
}

func (p *Producer) emit(ctx context.Context, routingKey string, event model.OnboardingEvent) error {
	id, err := snowflake.NextMessageID()
	if err != nil {
		logger.Logger.Error("Failed to generate message ID",
			zap.Int64("user_id", event.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to generate message ID: %w", err)
	}

	event.MessageID = "onb_" + id
	event.OccurredAt = p.now().UTC().Format(time.RFC3339)

	if err := p.publish(ctx, mq.ExchangeEvents, routingKey, event.MessageID, event); err != nil {
		logger.Logger.Error("Failed to publish onboarding event",
			zap.String("routing_key", routingKey),
			zap.Int64("user_id", event.UserID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published onboarding event",
		zap.String("message_id", event.MessageID),
		zap.String("routing_key", routingKey),
		zap.Int64("user_id", event.UserID),
	)
	return nil
}
