package kafka

import (
	"encoding/json"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// Топики событийной шины прачечной. События заказов и платежей разведены
// по топикам, чтобы подписчики могли читать только свой поток.
const (
	TopicOrderEvents     = "laundry.order.events"
	TopicPaymentEvents   = "laundry.payment.events"
	TopicDeadLetterQueue = "laundry.dlq"
)

// Типы агрегатов в outbox-записях.
const (
	AggregateOrder   = "order"
	AggregatePayment = "payment"
)

// Заголовки, которыми outbox worker помечает сообщения в DLQ.
// По ним dlq-reprocess и мониторинг фильтруют сообщения без разбора тела.
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// EventType — тип доменного события на шине.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"

	EventTypePaymentRecorded      EventType = "payment.recorded"
	EventTypePaymentStatusChanged EventType = "payment.status_changed"
	EventTypePaymentRefunded      EventType = "payment.refunded"
)

// TopicForAggregate возвращает топик, в который публикуются события агрегата.
func TopicForAggregate(aggregateType string) string {
	if aggregateType == AggregatePayment {
		return TopicPaymentEvents
	}
	return TopicOrderEvents
}

// OrderEvent — событие жизненного цикла заказа на шине.
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id"`
	CustomerID string                 `json:"customer_id"`
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// PaymentEvent — событие оплаты заказа на шине.
type PaymentEvent struct {
	EventType      EventType              `json:"event_type"`
	OrderID        string                 `json:"order_id"`
	Status         string                 `json:"status"`
	AmountCentavos int64                  `json:"amount_centavos"`
	Timestamp      time.Time              `json:"timestamp"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent собирает событие заказа с текущей меткой времени.
func NewOrderEvent(eventType EventType, orderID, customerID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Metadata:   metadata,
	}
}

// NewPaymentEvent собирает событие оплаты с текущей меткой времени.
func NewPaymentEvent(eventType EventType, orderID, status string, amountCentavos int64, metadata map[string]interface{}) *PaymentEvent {
	return &PaymentEvent{
		EventType:      eventType,
		OrderID:        orderID,
		Status:         status,
		AmountCentavos: amountCentavos,
		Timestamp:      time.Now().UTC(),
		Metadata:       metadata,
	}
}

// EventForOutbox превращает outbox-запись в типизированное событие шины.
// Ключом служит идентификатор агрегата: события одного заказа попадают
// в одну партицию и сохраняют порядок.
func EventForOutbox(msg domain.OutboxMessage) (key string, event interface{}) {
	key = msg.AggregateID
	if key == "" {
		key = msg.ID
	}

	var meta map[string]interface{}
	if len(msg.Payload) > 0 {
		// Нечитаемый payload не блокирует публикацию: событие уходит
		// без метаданных, подписчик видит хотя бы тип и агрегат.
		if err := json.Unmarshal(msg.Payload, &meta); err != nil {
			meta = nil
		}
	}

	if msg.AggregateType == AggregatePayment {
		return key, NewPaymentEvent(
			EventType(msg.EventType),
			msg.AggregateID,
			metaString(meta, "status"),
			metaInt64(meta, "amount_centavos"),
			meta,
		)
	}

	return key, NewOrderEvent(
		EventType(msg.EventType),
		msg.AggregateID,
		metaString(meta, "customer_id"),
		metaString(meta, "status"),
		meta,
	)
}

func metaString(meta map[string]interface{}, field string) string {
	value, _ := meta[field].(string)
	return value
}

func metaInt64(meta map[string]interface{}, field string) int64 {
	switch value := meta[field].(type) {
	case float64:
		return int64(value)
	case json.Number:
		parsed, err := value.Int64()
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
