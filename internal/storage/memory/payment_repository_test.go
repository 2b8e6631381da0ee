package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
	"github.com/vladislavdragonenkov/laundryos/internal/storage/memory"
)

func newPayment() domain.Payment {
	now := time.Now().UTC()
	return domain.Payment{
		ID:             "payment-1",
		OrderID:        "order-1",
		AmountCentavos: 0,
		Status:         domain.PaymentStatusPending,
		MethodID:       "cash",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestPaymentRepository_CreateGet(t *testing.T) {
	repo := memory.NewPaymentRepository()
	payment := newPayment()

	if err := repo.Create(payment); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.GetByOrder(payment.OrderID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != payment.ID {
		t.Fatalf("expected id %s, got %s", payment.ID, stored.ID)
	}
}

func TestPaymentRepository_GetMissing(t *testing.T) {
	repo := memory.NewPaymentRepository()
	if _, err := repo.GetByOrder("nope"); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestPaymentRepository_Save(t *testing.T) {
	repo := memory.NewPaymentRepository()
	payment := newPayment()
	if err := repo.Create(payment); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, _ := repo.GetByOrder(payment.OrderID)
	stored.AmountCentavos = 30000
	stored.Status = domain.PaymentStatusPartial
	if err := repo.Save(stored); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	updated, _ := repo.GetByOrder(payment.OrderID)
	if updated.Status != domain.PaymentStatusPartial || updated.AmountCentavos != 30000 {
		t.Fatalf("unexpected payment after save: %+v", updated)
	}
	if updated.Version != stored.Version+1 {
		t.Fatalf("expected version bump, got %d", updated.Version)
	}
}

func TestPaymentRepository_SaveVersionConflict(t *testing.T) {
	repo := memory.NewPaymentRepository()
	payment := newPayment()
	if err := repo.Create(payment); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stale, _ := repo.GetByOrder(payment.OrderID)
	fresh, _ := repo.GetByOrder(payment.OrderID)

	fresh.AmountCentavos = 10000
	if err := repo.Save(fresh); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	stale.AmountCentavos = 20000
	if err := repo.Save(stale); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}
