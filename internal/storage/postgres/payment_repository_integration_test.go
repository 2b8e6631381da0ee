package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

func TestPaymentRepository_PostgresCreateGetAndSave(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	orders := NewOrderRepository(store)
	repo := NewPaymentRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	order := sampleOrder("order-pay-1", "customer-3", now)
	if err := orders.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	payment := domain.Payment{
		ID:             "payment-1",
		OrderID:        order.ID,
		AmountCentavos: 0,
		Status:         domain.PaymentStatusPending,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repo.Create(payment); err != nil {
		t.Fatalf("create payment: %v", err)
	}

	got, err := repo.GetByOrder(order.ID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if got.Status != domain.PaymentStatusPending || got.AmountCentavos != 0 {
		t.Fatalf("unexpected payment payload: %+v", got)
	}
	if !got.PaidAt.IsZero() {
		t.Fatalf("expected zero paid_at for pending payment, got %v", got.PaidAt)
	}

	got.AmountCentavos = order.TotalCentavos
	got.Status = domain.PaymentStatusPaid
	got.PaidAt = now.Add(time.Minute)
	got.UpdatedAt = now.Add(time.Minute)
	if err := repo.Save(got); err != nil {
		t.Fatalf("save payment: %v", err)
	}

	updated, err := repo.GetByOrder(order.ID)
	if err != nil {
		t.Fatalf("get updated payment: %v", err)
	}
	if updated.Status != domain.PaymentStatusPaid {
		t.Fatalf("unexpected status after save: %s", updated.Status)
	}
	if updated.PaidAt.IsZero() {
		t.Fatal("expected paid_at to be set after save")
	}
	if updated.Version != got.Version+1 {
		t.Fatalf("unexpected version after save: got=%d want=%d", updated.Version, got.Version+1)
	}
}

func TestPaymentRepository_PostgresErrors(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	orders := NewOrderRepository(store)
	repo := NewPaymentRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)

	if _, err := repo.GetByOrder("missing-order"); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}

	order := sampleOrder("order-pay-errors", "customer-4", now)
	if err := orders.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	payment := domain.Payment{
		ID:        "payment-errors",
		OrderID:   order.ID,
		Status:    domain.PaymentStatusPending,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Save(payment); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound on save missing, got %v", err)
	}

	if err := repo.Create(payment); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if err := repo.Create(payment); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict on duplicate create, got %v", err)
	}

	stale := payment
	stale.Status = domain.PaymentStatusPartial
	stale.Version = 42
	if err := repo.Save(stale); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict on stale save, got %v", err)
	}
}
