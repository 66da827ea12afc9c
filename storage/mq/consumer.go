package mq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"FinTrack/config"
	"FinTrack/pkg/errors"
	"FinTrack/pkg/logger"
	mqotel "FinTrack/pkg/mq"
)

// MessageHandler 处理单条消息，返回 SkipMessageError 时直接确认
type MessageHandler func(ctx context.Context, body []byte) error

type ConsumeOptions struct {
	Queue         string
	ConsumerTag   string
	PrefetchCount int
	Handler       MessageHandler
}

// Consume 阻塞消费直到 ctx 结束或 channel 关闭
func Consume(ctx context.Context, opts ConsumeOptions) error {
	if conn == nil {
		return ErrNotConnected
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if opts.PrefetchCount > 0 {
		if err := ch.Qos(opts.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	msgs, err := ch.Consume(
		opts.Queue,
		opts.ConsumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Logger.Info("Started consuming messages",
		zap.String("queue", opts.Queue),
		zap.String("consumer_tag", opts.ConsumerTag),
		zap.Int("prefetch_count", opts.PrefetchCount),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consumer channel closed: %s", opts.Queue)
			}
			handleDelivery(ctx, opts, msg)
		}
	}
}

// Acknowledger 便于测试替换 amqp.Delivery 的确认
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, opts ConsumeOptions, msg amqp.Delivery) {
	started := time.Now()
	msgCtx, span := mqotel.StartDeliverySpan(ctx, config.Cfg.ServiceName, opts.Queue, msg)

	err := opts.Handler(msgCtx, msg.Body)
	status := settle(msg, err)

	switch status {
	case "skip":
		logger.Logger.Debug("Message skipped",
			zap.String("queue", opts.Queue),
			zap.String("message_id", msg.MessageId),
			zap.Error(err),
		)
	case "nack":
		logger.Logger.Error("Failed to process message",
			zap.String("queue", opts.Queue),
			zap.String("message_id", msg.MessageId),
			zap.Bool("redelivered", msg.Redelivered),
			zap.Error(err),
		)
	}

	mqotel.EndDeliverySpan(msgCtx, span, msg.RoutingKey, status, started, err)
}

// settle 根据处理结果确认消息，重投过一次仍失败的消息不再入队
func settle(msg amqp.Delivery, err error) string {
	return settleWith(msg, msg.Redelivered, err)
}

func settleWith(ack Acknowledger, redelivered bool, err error) string {
	switch {
	case err == nil:
		_ = ack.Ack(false)
		return "ack"
	case errors.IsSkipMessageError(err):
		_ = ack.Ack(false)
		return "skip"
	default:
		_ = ack.Nack(false, !redelivered)
		return "nack"
	}
}
