package domain_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

func TestParseOrderStatus(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  domain.OrderStatus
	}{
		{name: "canonical", input: "pending payment", want: domain.OrderStatusPendingPayment},
		{name: "trim and case", input: "  Queueing  ", want: domain.OrderStatusQueueing},
		{name: "compound", input: "Washing/Cleaning", want: domain.OrderStatusWashing},
		{name: "ready", input: "ready for pickup/delivery", want: domain.OrderStatusReady},
		{name: "legacy ready with bang", input: "Ready for Pickup/Delivery!", want: domain.OrderStatusReady},
		{name: "completed", input: "COMPLETED", want: domain.OrderStatusCompleted},
		{name: "cancelled", input: "cancelled", want: domain.OrderStatusCancelled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.ParseOrderStatus(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestParseOrderStatus_Unknown(t *testing.T) {
	for _, input := range []string{"", "shipped", "done", "pending"} {
		if _, err := domain.ParseOrderStatus(input); !errors.Is(err, domain.ErrUnknownOrderStatus) {
			t.Fatalf("expected ErrUnknownOrderStatus for %q, got %v", input, err)
		}
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	for _, s := range domain.AllOrderStatuses() {
		terminal := s == domain.OrderStatusCompleted || s == domain.OrderStatusCancelled
		if s.IsTerminal() != terminal {
			t.Fatalf("IsTerminal(%s) = %v, expected %v", s, s.IsTerminal(), terminal)
		}
	}
}

func TestOrderStatus_Title(t *testing.T) {
	cases := map[domain.OrderStatus]string{
		domain.OrderStatusPendingPayment: "Pending Payment",
		domain.OrderStatusWashing:        "Washing/Cleaning",
		domain.OrderStatusReady:          "Ready For Pickup/Delivery",
		domain.OrderStatusCompleted:      "Completed",
	}
	for status, want := range cases {
		if got := status.Title(); got != want {
			t.Fatalf("Title(%s) = %q, expected %q", status, got, want)
		}
	}
}
