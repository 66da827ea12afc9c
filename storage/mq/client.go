package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"FinTrack/config"
	"FinTrack/pkg/logger"
	mqotel "FinTrack/pkg/mq"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

// Init 建立连接并声明交换机、队列和绑定
func Init() error {
	connOnce.Do(func() {
		cfg := config.Cfg

		var c *amqp.Connection
		c, connErr = amqp.Dial(cfg.GetRabbitMQURL())
		if connErr != nil {
			logger.Logger.Error("Failed to connect RabbitMQ",
				zap.String("addr", cfg.RabbitMQAddr),
				zap.Error(connErr),
			)
			return
		}

		ch, err := c.Channel()
		if err != nil {
			connErr = fmt.Errorf("failed to open setup channel: %w", err)
			_ = c.Close()
			return
		}
		defer ch.Close()

		if err := DeclareTopology(ch); err != nil {
			connErr = err
			_ = c.Close()
			return
		}

		if cfg.OTelEnabled {
			if err := mqotel.InitMQMetrics(otel.Meter(cfg.ServiceName + ".rabbitmq")); err != nil {
				logger.Logger.Warn("Failed to init RabbitMQ metrics", zap.Error(err))
			}
		}

		conn = c
		logger.Logger.Info("RabbitMQ initialized successfully", zap.String("addr", cfg.RabbitMQAddr))
	})

	return connErr
}

func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	pubMutex.Lock()
	if publisherCh != nil && !publisherCh.IsClosed() {
		_ = publisherCh.Close()
	}
	publisherCh = nil
	pubMutex.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
