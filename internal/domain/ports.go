package domain

import "time"

// OutboxMessage — событие прачечной, ожидающее публикации на шину.
// Пишется в одной транзакции с изменением заказа или платежа.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats — срез очереди неотправленных событий. По возрасту самой
// старой записи мониторинг судит, жив ли relay-воркер.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxPublisher доставляет накопленные события подписчикам.
// Повторная публикация одной и той же записи должна быть безопасной:
// воркер ретраит без знания о том, дошла ли прошлая попытка.
type OutboxPublisher interface {
	Publish(event OutboxMessage) error
}

// OutboxRepository — очередь событий с пометками о доставке.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineRepository хранит хронику заказа: каждый перевод статуса
// и каждое движение денег оставляют здесь запись.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// IdempotencyRepository помнит, какие запросы кассы уже обработаны,
// и отдаёт сохранённый ответ при повторе с тем же ключом.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}
