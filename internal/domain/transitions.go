package domain

import "fmt"

// Граф допустимых переходов статусов заказа. Таблица неизменяемая и
// строится один раз при загрузке пакета; терминальные статусы не имеют
// исходящих рёбер.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingPayment: {OrderStatusQueueing, OrderStatusCancelled},
	OrderStatusQueueing:       {OrderStatusWashing, OrderStatusCancelled},
	OrderStatusWashing:        {OrderStatusFinishing, OrderStatusCancelled},
	OrderStatusFinishing:      {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:          {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:      {},
	OrderStatusCancelled:      {},
}

// CanTransition проверяет переход по таблице допустимых рёбер.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses возвращает допустимые следующие статусы (пусто для терминальных).
func NextStatuses(current OrderStatus) []OrderStatus {
	next := orderTransitions[current]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// ValidateStatusWithPayment проверяет, согласован ли целевой статус заказа
// с состоянием оплаты. Возвращает nil либо *ConsistencyError.
func ValidateStatusWithPayment(to OrderStatus, paymentStatus PaymentStatus, amountCentavos, totalCentavos int64) error {
	// Завершить заказ можно только при полной оплате.
	if to == OrderStatusCompleted {
		if paymentStatus != PaymentStatusPaid {
			return &ConsistencyError{Reason: "Order cannot be completed unless payment status is 'Paid'."}
		}
		if amountCentavos < totalCentavos {
			return &ConsistencyError{Reason: fmt.Sprintf(
				"Order cannot be completed. Amount paid (%s) is less than total (%s).",
				FormatCentavos(amountCentavos), FormatCentavos(totalCentavos),
			)}
		}
	}

	// Начать обработку (очередь и дальше) нельзя без начала оплаты.
	switch to {
	case OrderStatusQueueing, OrderStatusWashing, OrderStatusFinishing, OrderStatusReady:
		if paymentStatus == PaymentStatusPending || amountCentavos <= 0 {
			return &ConsistencyError{Reason: fmt.Sprintf(
				"Order cannot move to '%s' without any payment.", to.Title(),
			)}
		}
	}

	return nil
}

// ValidateTransitionWithPayment — двухфазная проверка перехода:
// сначала структурная по графу, затем бизнес-согласованность с оплатой.
// Структурное нарушение прерывает проверку раньше бизнес-правил.
func ValidateTransitionWithPayment(from, to OrderStatus, paymentStatus PaymentStatus, amountCentavos, totalCentavos int64) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to, ValidNext: NextStatuses(from)}
	}
	return ValidateStatusWithPayment(to, paymentStatus, amountCentavos, totalCentavos)
}

// ShouldRefundOnCancel сигнализирует вызывающей стороне, что при отмене
// заказа учтённые деньги нужно обнулить и пометить платёж возвращённым.
func ShouldRefundOnCancel(orderStatus OrderStatus, paymentStatus PaymentStatus) bool {
	return orderStatus == OrderStatusCancelled && CanRefund(paymentStatus)
}
