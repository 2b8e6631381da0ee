package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной услуги в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной стоимости заказа.
	ErrTotalNegative = errors.New("total_centavos must be non-negative")
	// Ошибка при некорректном количестве (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка при некорректной цене позиции (<= 0).
	ErrItemPriceInvalid = errors.New("item price must be greater than zero")
	// Ошибка несоответствия стоимости заказа и суммы позиций.
	ErrTotalMismatch = errors.New("order total does not match items sum")
	// Ошибка отсутствующего идентификатора заказа в платеже.
	ErrOrderIDRequired = errors.New("order_id is required")
	// Ошибка отрицательной суммы платежа.
	ErrPaymentAmountNegative = errors.New("payment amount must be non-negative")
	// Ошибка неизвестного статуса заказа на границе системы.
	ErrUnknownOrderStatus = errors.New("unknown order status")
	// Ошибка неизвестного статуса оплаты на границе системы.
	ErrUnknownPaymentStatus = errors.New("unknown payment status")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPaymentNotFound возвращается, если платёж по заказу не найден.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrCustomerNotFound возвращается, если клиент не найден.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrServiceNotFound возвращается, если услуга не найдена в каталоге.
	ErrServiceNotFound = errors.New("service not found")
	// ErrVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrVersionConflict = errors.New("version conflict")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
	// ErrIdempotencyKeyRequired — пустой idempotency-key.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired — пустой хэш запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyAlreadyExists — ключ уже зарегистрирован.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyKeyNotFound — ключ не найден.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	// ErrIdempotencyHashMismatch — тот же ключ пришёл с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency request hash mismatch")
	// ErrRefundPending сигнализирует, что заказ отменён, но возврат оплаты
	// не записался. Отмена уже зафиксирована; возврат нужно повторить.
	ErrRefundPending = errors.New("order cancelled but refund is pending")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// ValidationError собирает все найденные нарушения полей за один проход.
// Никогда не фатальна: вызывающая сторона решает, блокировать ли изменение.
type ValidationError struct {
	Issues []string
}

// Error возвращает маркированный список нарушений.
func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		lines = append(lines, "• "+issue)
	}
	return strings.Join(lines, "\n")
}

// TransitionError описывает структурное нарушение графа переходов.
// Возвращается до проверки бизнес-согласованности.
type TransitionError struct {
	From      OrderStatus
	To        OrderStatus
	ValidNext []OrderStatus
}

// Error формирует сообщение с перечнем допустимых следующих статусов
// либо указание, что статус финальный.
func (e *TransitionError) Error() string {
	if len(e.ValidNext) == 0 {
		return fmt.Sprintf("'%s' is a final status and cannot be changed.", e.From.Title())
	}
	titles := make([]string, 0, len(e.ValidNext))
	for _, s := range e.ValidNext {
		titles = append(titles, s.Title())
	}
	return fmt.Sprintf(
		"Invalid transition from '%s' to '%s'. Valid next statuses: %s.",
		e.From.Title(), e.To.Title(), strings.Join(titles, ", "),
	)
}

// ConsistencyError описывает расхождение между запрошенным статусом
// и фактически учтёнными деньгами. Suggested содержит статус, который
// соответствует деньгам, когда проверка может его вычислить.
type ConsistencyError struct {
	Reason    string
	Suggested PaymentStatus
}

func (e *ConsistencyError) Error() string {
	return e.Reason
}
