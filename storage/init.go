package storage

import (
	"fmt"

	"FinTrack/storage/database"
	"FinTrack/storage/mq"
	"FinTrack/storage/redis"
)

// Init 依次连接 Postgres、Redis、RabbitMQ，任一失败即返回
func Init() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"postgres", database.Init},
		{"redis", redis.Init},
		{"rabbitmq", mq.Init},
	}
	for _, s := range steps {
		if err := s.init(); err != nil {
			return fmt.Errorf("init %s: %w", s.name, err)
		}
	}
	return nil
}
