package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

const defaultPullLimit = 100

type outboxState string

const (
	outboxPending outboxState = "pending"
	outboxSent    outboxState = "sent"
	outboxFailed  outboxState = "failed"
)

// outboxEntry — событие в очереди вместе с его состоянием доставки.
type outboxEntry struct {
	msg        domain.OutboxMessage
	state      outboxState
	enqueuedAt time.Time
	touchedAt  time.Time
}

// outboxQueue хранит события прачечной в памяти до публикации на шину.
type outboxQueue struct {
	mu      sync.RWMutex
	entries map[string]*outboxEntry
}

// NewOutboxRepository создаёт in-memory реализацию outbox.
func NewOutboxRepository() domain.OutboxRepository {
	return &outboxQueue{entries: make(map[string]*outboxEntry)}
}

func (q *outboxQueue) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	q.entries[msg.ID] = &outboxEntry{
		msg:        msg,
		state:      outboxPending,
		enqueuedAt: now,
		touchedAt:  now,
	}
	return msg, nil
}

// PullPending отдаёт ожидающие события в порядке постановки, не больше limit.
func (q *outboxQueue) PullPending(limit int) ([]domain.OutboxMessage, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if limit <= 0 {
		limit = defaultPullLimit
	}

	waiting := q.pendingEntries()
	if len(waiting) > limit {
		waiting = waiting[:limit]
	}

	result := make([]domain.OutboxMessage, 0, len(waiting))
	for _, entry := range waiting {
		result = append(result, entry.msg)
	}
	return result, nil
}

// Stats считает размер и возраст backlog для мониторинга.
func (q *outboxQueue) Stats() (domain.OutboxStats, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	waiting := q.pendingEntries()
	stats := domain.OutboxStats{PendingCount: len(waiting)}
	if len(waiting) > 0 {
		stats.OldestPendingAt = waiting[0].enqueuedAt
	}
	return stats, nil
}

func (q *outboxQueue) MarkSent(id string) error {
	return q.transition(id, outboxSent)
}

func (q *outboxQueue) MarkFailed(id string) error {
	return q.transition(id, outboxFailed)
}

// pendingEntries собирает ожидающие записи, отсортированные от старых к новым.
// Вызывается под блокировкой.
func (q *outboxQueue) pendingEntries() []*outboxEntry {
	waiting := make([]*outboxEntry, 0, len(q.entries))
	for _, entry := range q.entries {
		if entry.state == outboxPending {
			waiting = append(waiting, entry)
		}
	}
	sort.Slice(waiting, func(i, j int) bool {
		return waiting[i].enqueuedAt.Before(waiting[j].enqueuedAt)
	})
	return waiting
}

func (q *outboxQueue) transition(id string, state outboxState) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.entries[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	entry.state = state
	entry.touchedAt = time.Now().UTC()
	return nil
}

var _ domain.OutboxRepository = (*outboxQueue)(nil)
