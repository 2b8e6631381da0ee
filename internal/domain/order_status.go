package domain

import "strings"

// OrderStatus описывает жизненный цикл заказа в прачечной.
type OrderStatus string

const (
	// OrderStatusPendingPayment — заказ создан, оплата ещё не начата.
	OrderStatusPendingPayment OrderStatus = "pending payment"
	// OrderStatusQueueing — заказ принят и ожидает обработки.
	OrderStatusQueueing OrderStatus = "queueing"
	// OrderStatusWashing — вещи находятся в стирке/чистке.
	OrderStatusWashing OrderStatus = "washing/cleaning"
	// OrderStatusFinishing — сушка, глажка и упаковка.
	OrderStatusFinishing OrderStatus = "finishing up"
	// OrderStatusReady — заказ готов к выдаче или доставке.
	OrderStatusReady OrderStatus = "ready for pickup/delivery"
	// OrderStatusCompleted — заказ выдан клиенту; терминальный статус.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// AllOrderStatuses перечисляет статусы в порядке жизненного цикла.
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPendingPayment,
		OrderStatusQueueing,
		OrderStatusWashing,
		OrderStatusFinishing,
		OrderStatusReady,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}
}

// ParseOrderStatus нормализует свободный ввод (trim + lowercase) и возвращает
// статус из закрытого перечисления. Разбор выполняется один раз на границе
// системы; неизвестные имена отклоняются сразу.
func ParseOrderStatus(name string) (OrderStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case string(OrderStatusPendingPayment):
		return OrderStatusPendingPayment, nil
	case string(OrderStatusQueueing):
		return OrderStatusQueueing, nil
	case string(OrderStatusWashing):
		return OrderStatusWashing, nil
	case string(OrderStatusFinishing):
		return OrderStatusFinishing, nil
	case string(OrderStatusReady), "ready for pickup/delivery!":
		// Старое написание с восклицательным знаком встречается в исторических данных.
		return OrderStatusReady, nil
	case string(OrderStatusCompleted):
		return OrderStatusCompleted, nil
	case string(OrderStatusCancelled):
		return OrderStatusCancelled, nil
	default:
		return "", ErrUnknownOrderStatus
	}
}

// IsTerminal сообщает, является ли статус конечным (без исходящих переходов).
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// String возвращает каноническое имя статуса.
func (s OrderStatus) String() string {
	return string(s)
}

// Title возвращает имя статуса для отображения пользователю ("Pending Payment").
func (s OrderStatus) Title() string {
	return titleWords(string(s))
}

// titleWords поднимает регистр первой буквы каждого слова, учитывая
// разделители из составных статусов ("washing/cleaning").
func titleWords(value string) string {
	out := []rune(value)
	upNext := true
	for i, r := range out {
		switch {
		case r == ' ' || r == '/':
			upNext = true
		case upNext:
			out[i] = []rune(strings.ToUpper(string(r)))[0]
			upNext = false
		}
	}
	return string(out)
}
