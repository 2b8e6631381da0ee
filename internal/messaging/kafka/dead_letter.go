package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// DeadLetter — тело сообщения в DLQ. Несёт исходную outbox-запись целиком,
// чтобы dlq-reprocess мог восстановить событие и вернуть его в рабочий топик.
type DeadLetter struct {
	OutboxID      string          `json:"outbox_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishError  string          `json:"publish_error"`
	Attempts      int             `json:"attempts"`
	FailedAt      time.Time       `json:"failed_at"`
}

// DeadLetterPublisher отправляет в DLQ outbox-записи, исчерпавшие попытки
// публикации. Контекст сбоя дублируется в заголовках Kafka.
type DeadLetterPublisher struct {
	producer *Producer
	topic    string
}

// NewDeadLetterPublisher создаёт паблишер мёртвых сообщений.
func NewDeadLetterPublisher(producer *Producer, topic string) *DeadLetterPublisher {
	if topic == "" {
		topic = TopicDeadLetterQueue
	}
	return &DeadLetterPublisher{producer: producer, topic: topic}
}

// PublishDeadLetter записывает безнадёжную outbox-запись в DLQ вместе с
// числом попыток и текстом последней ошибки.
func (p *DeadLetterPublisher) PublishDeadLetter(msg domain.OutboxMessage, attempts int, cause error) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka dead letter publisher is not initialized")
	}

	causeText := ""
	if cause != nil {
		causeText = cause.Error()
	}
	failedAt := time.Now().UTC()

	letter := DeadLetter{
		OutboxID:      msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       json.RawMessage(msg.Payload),
		PublishError:  causeText,
		Attempts:      attempts,
		FailedAt:      failedAt,
	}
	value, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}

	headers := []sarama.RecordHeader{
		{Key: []byte(HeaderRetryCount), Value: []byte(strconv.Itoa(attempts))},
		{Key: []byte(HeaderOriginalTopic), Value: []byte(TopicForAggregate(msg.AggregateType))},
		{Key: []byte(HeaderErrorMessage), Value: []byte(causeText)},
		{Key: []byte(HeaderFailedAt), Value: []byte(failedAt.Format(time.RFC3339Nano))},
	}

	key := msg.AggregateID
	if key == "" {
		key = msg.ID
	}
	return p.producer.send(p.topic, key, value, headers)
}
