package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

func TestParsePaymentStatus(t *testing.T) {
	cases := []struct {
		input string
		want  domain.PaymentStatus
	}{
		{input: "pending", want: domain.PaymentStatusPending},
		{input: " Unpaid ", want: domain.PaymentStatusPending}, // исторический синоним
		{input: "Partial", want: domain.PaymentStatusPartial},
		{input: "PAID", want: domain.PaymentStatusPaid},
		{input: "failed", want: domain.PaymentStatusFailed},
		{input: "Refunded", want: domain.PaymentStatusRefunded},
	}

	for _, tc := range cases {
		got, err := domain.ParsePaymentStatus(tc.input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParsePaymentStatus(%q) = %s, expected %s", tc.input, got, tc.want)
		}
	}

	if _, err := domain.ParsePaymentStatus("cancelled"); !errors.Is(err, domain.ErrUnknownPaymentStatus) {
		t.Fatalf("expected ErrUnknownPaymentStatus, got %v", err)
	}
}

func TestPaymentStatus_ComputedPaymentDate(t *testing.T) {
	now := time.Now().UTC()

	when, ok := domain.PaymentStatusPaid.ComputedPaymentDate(now)
	if !ok || !when.Equal(now) {
		t.Fatalf("paid must produce the current timestamp, got %v ok=%v", when, ok)
	}

	for _, s := range []domain.PaymentStatus{
		domain.PaymentStatusPending,
		domain.PaymentStatusPartial,
		domain.PaymentStatusFailed,
		domain.PaymentStatusRefunded,
	} {
		if _, ok := s.ComputedPaymentDate(now); ok {
			t.Fatalf("%s must not produce a payment date", s)
		}
	}
}

func TestPaymentStatus_ComputedAmountPaid(t *testing.T) {
	const total = int64(60000)

	cases := map[domain.PaymentStatus]int64{
		domain.PaymentStatusPaid:     total,
		domain.PaymentStatusRefunded: 0,
		domain.PaymentStatusPending:  0,
		domain.PaymentStatusPartial:  0,
		domain.PaymentStatusFailed:   0,
	}
	for status, want := range cases {
		if got := status.ComputedAmountPaid(total); got != want {
			t.Fatalf("ComputedAmountPaid(%s) = %d, expected %d", status, got, want)
		}
	}
}

func TestPaymentStatus_AmountEditable(t *testing.T) {
	// Для paid и refunded сумма производная, ручной ввод запрещён.
	cases := map[domain.PaymentStatus]bool{
		domain.PaymentStatusPending:  true,
		domain.PaymentStatusPartial:  true,
		domain.PaymentStatusFailed:   true,
		domain.PaymentStatusPaid:     false,
		domain.PaymentStatusRefunded: false,
	}
	for status, want := range cases {
		if got := status.AmountEditable(); got != want {
			t.Fatalf("AmountEditable(%s) = %v, expected %v", status, got, want)
		}
	}
}

func TestPaymentStatus_DisplayColor(t *testing.T) {
	cases := map[domain.PaymentStatus]string{
		domain.PaymentStatusPending:  "#ffc107",
		domain.PaymentStatusPartial:  "#fd7e14",
		domain.PaymentStatusPaid:     "#28a745",
		domain.PaymentStatusFailed:   "#dc3545",
		domain.PaymentStatusRefunded: "#6c757d",
	}
	for status, want := range cases {
		if got := status.DisplayColor(); got != want {
			t.Fatalf("DisplayColor(%s) = %q, expected %q", status, got, want)
		}
	}

	if got := domain.PaymentStatus("mystery").DisplayColor(); got != "#333333" {
		t.Fatalf("unknown status must fall back to the neutral color, got %q", got)
	}
}
