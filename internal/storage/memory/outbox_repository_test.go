package memory_test

import (
	"testing"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
	"github.com/vladislavdragonenkov/laundryos/internal/storage/memory"
)

func TestOutboxRepository_EnqueuePull(t *testing.T) {
	repo := memory.NewOutboxRepository()

	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     "order.status_changed",
		Payload:       []byte(`{"status":"queueing"}`),
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("enqueue must assign an ID")
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != msg.ID {
		t.Fatalf("expected the enqueued message, got %v", pending)
	}
}

func TestOutboxRepository_MarkSent(t *testing.T) {
	repo := memory.NewOutboxRepository()
	msg, _ := repo.Enqueue(domain.OutboxMessage{AggregateID: "order-1", EventType: "order.created"})

	if err := repo.MarkSent(msg.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}

	pending, _ := repo.PullPending(10)
	if len(pending) != 0 {
		t.Fatalf("sent message must leave the backlog, got %v", pending)
	}
}

func TestOutboxRepository_Stats(t *testing.T) {
	repo := memory.NewOutboxRepository()
	_, _ = repo.Enqueue(domain.OutboxMessage{AggregateID: "order-1", EventType: "order.created"})
	_, _ = repo.Enqueue(domain.OutboxMessage{AggregateID: "order-2", EventType: "order.created"})

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 2 {
		t.Fatalf("expected 2 pending, got %d", stats.PendingCount)
	}
	if stats.OldestPendingAt.IsZero() {
		t.Fatal("oldest pending timestamp must be set")
	}
}

func TestOutboxRepository_MarkMissing(t *testing.T) {
	repo := memory.NewOutboxRepository()
	if err := repo.MarkSent("missing"); err == nil {
		t.Fatal("expected error for missing record")
	}
	if err := repo.MarkFailed("missing"); err == nil {
		t.Fatal("expected error for missing record")
	}
}
