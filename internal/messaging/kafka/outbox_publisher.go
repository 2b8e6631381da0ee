package kafka

import (
	"fmt"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// OutboxTopicPublisher превращает outbox-записи в типизированные события
// шины и публикует их в топик своего агрегата: платежи — в платёжный,
// всё остальное — в топик заказов.
type OutboxTopicPublisher struct {
	producer     *Producer
	orderTopic   string
	paymentTopic string
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, orderTopic, paymentTopic string) domain.OutboxPublisher {
	if orderTopic == "" {
		orderTopic = TopicOrderEvents
	}
	if paymentTopic == "" {
		paymentTopic = TopicPaymentEvents
	}
	return &OutboxTopicPublisher{
		producer:     producer,
		orderTopic:   orderTopic,
		paymentTopic: paymentTopic,
	}
}

func (p *OutboxTopicPublisher) Publish(msg domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	topic := p.orderTopic
	if msg.AggregateType == AggregatePayment {
		topic = p.paymentTopic
	}

	key, event := EventForOutbox(msg)
	return p.producer.PublishEvent(topic, key, event)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
