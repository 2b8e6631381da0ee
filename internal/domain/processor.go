package domain

import "time"

// Чистые вычисления над деньгами заказа. Все сравнения — целочисленные,
// в сентаво.

// CalculateTotal возвращает сумму qty*price по всем позициям; пустой список даёт 0.
func CalculateTotal(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += int64(item.Qty) * item.PriceCentavos
	}
	return total
}

// DeterminePaymentDate выводит дату оплаты из статуса: paid — now, иначе даты нет.
func DeterminePaymentDate(status PaymentStatus, now time.Time) (time.Time, bool) {
	return status.ComputedPaymentDate(now)
}

// DetermineAmountPaid выводит учтённую сумму из статуса: paid — полная
// стоимость, refunded — ноль, иначе переданная вручную сумма (по умолчанию 0).
func DetermineAmountPaid(status PaymentStatus, totalCentavos, customCentavos int64) int64 {
	switch status {
	case PaymentStatusPaid:
		return totalCentavos
	case PaymentStatusRefunded:
		return 0
	default:
		return customCentavos
	}
}

// CanRefund сообщает, допустим ли возврат для статуса (есть что возвращать).
func CanRefund(status PaymentStatus) bool {
	return status == PaymentStatusPaid || status == PaymentStatusPartial
}

// ShouldAutoUpdateStatus сигнализирует вызывающей стороне, что после полной
// оплаты заказ в "pending payment" следует автоматически продвинуть в очередь.
func ShouldAutoUpdateStatus(currentOrderStatus OrderStatus, newPaymentStatus PaymentStatus) bool {
	return newPaymentStatus == PaymentStatusPaid && currentOrderStatus == OrderStatusPendingPayment
}

// ClassifyAmount — каноническое правило "каким должен быть статус оплаты"
// по учтённым деньгам: <=0 — pending, >=стоимости — paid, иначе partial.
func ClassifyAmount(amountCentavos, totalCentavos int64) PaymentStatus {
	switch {
	case amountCentavos <= 0:
		return PaymentStatusPending
	case amountCentavos >= totalCentavos:
		return PaymentStatusPaid
	default:
		return PaymentStatusPartial
	}
}
