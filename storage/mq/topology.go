package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeEvents 领域事件交换机
	ExchangeEvents = "events.topic"

	QueueStatusInvalidate = "onboarding.status.invalidate"
	QueueWelcome          = "onboarding.welcome"

	RoutingKeyStepPrefix          = "onboarding.step."
	RoutingKeyOnboardingCompleted = "onboarding.completed"
)

// StepRoutingKey 某一步完成的路由键
func StepRoutingKey(step string) string {
	return RoutingKeyStepPrefix + step
}

type binding struct {
	queue      string
	routingKey string
}

var bindings = []binding{
	{queue: QueueStatusInvalidate, routingKey: RoutingKeyStepPrefix + "*"},
	{queue: QueueWelcome, routingKey: RoutingKeyOnboardingCompleted},
}

// DeclareTopology 幂等声明交换机、队列和绑定
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeEvents, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.routingKey, ExchangeEvents, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}

	return nil
}
