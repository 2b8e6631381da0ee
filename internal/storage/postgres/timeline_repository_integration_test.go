package postgres

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

func TestTimelineRepository_PostgresAppendAndList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewTimelineRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)

	events := []domain.TimelineEvent{
		{OrderID: "order-1", Type: domain.TimelineEventOrderCreated, Occurred: now.Add(-2 * time.Minute)},
		{OrderID: "order-1", Type: domain.TimelineEventPaymentRecorded, Reason: "paid 150.00", Occurred: now.Add(-time.Minute)},
		{OrderID: "order-2", Type: domain.TimelineEventOrderCreated, Occurred: now},
	}
	for _, event := range events {
		if err := repo.Append(event); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	// Событие без даты получает текущее время при записи.
	if err := repo.Append(domain.TimelineEvent{OrderID: "order-1", Type: domain.TimelineEventOrderStatusChanged}); err != nil {
		t.Fatalf("append event without occurred: %v", err)
	}

	listed, err := repo.List("order-1")
	if err != nil {
		t.Fatalf("list timeline: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 events for order-1, got %d", len(listed))
	}
	if listed[0].Type != domain.TimelineEventOrderCreated {
		t.Fatalf("expected chronological order, got first=%s", listed[0].Type)
	}
	if listed[1].Reason != "paid 150.00" {
		t.Fatalf("unexpected reason: %q", listed[1].Reason)
	}
	if listed[2].Occurred.IsZero() {
		t.Fatal("expected occurred to be filled for appended event")
	}

	other, err := repo.List("order-2")
	if err != nil {
		t.Fatalf("list order-2 timeline: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("expected 1 event for order-2, got %d", len(other))
	}
}
