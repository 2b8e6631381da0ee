package domain

import (
	"strings"
	"time"
)

// PaymentStatus описывает состояние расчёта по заказу.
type PaymentStatus string

const (
	// PaymentStatusPending — оплата не начата.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusPartial — внесена часть суммы.
	PaymentStatusPartial PaymentStatus = "partial"
	// PaymentStatusPaid — заказ оплачен полностью.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusFailed — попытка оплаты завершилась ошибкой.
	PaymentStatusFailed PaymentStatus = "failed"
	// PaymentStatusRefunded — деньги возвращены клиенту.
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// AllPaymentStatuses перечисляет поддерживаемые статусы оплаты.
func AllPaymentStatuses() []PaymentStatus {
	return []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusPartial,
		PaymentStatusPaid,
		PaymentStatusFailed,
		PaymentStatusRefunded,
	}
}

// ParsePaymentStatus нормализует свободный ввод и возвращает статус из
// закрытого перечисления. "unpaid" — исторический синоним pending.
func ParsePaymentStatus(name string) (PaymentStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case string(PaymentStatusPending), "unpaid":
		return PaymentStatusPending, nil
	case string(PaymentStatusPartial):
		return PaymentStatusPartial, nil
	case string(PaymentStatusPaid):
		return PaymentStatusPaid, nil
	case string(PaymentStatusFailed):
		return PaymentStatusFailed, nil
	case string(PaymentStatusRefunded):
		return PaymentStatusRefunded, nil
	default:
		return "", ErrUnknownPaymentStatus
	}
}

// String возвращает каноническое имя статуса.
func (s PaymentStatus) String() string {
	return string(s)
}

// Title возвращает имя статуса для отображения ("Partial").
func (s PaymentStatus) Title() string {
	return titleWords(string(s))
}

// paymentBehavior описывает вычисляемое поведение статуса оплаты.
// Таблица неизменяемая и строится один раз при загрузке пакета.
type paymentBehavior struct {
	// dateIsNow: дата оплаты выводится как текущий момент.
	dateIsNow bool
	// amountIsTotal: сумма оплаты равна полной стоимости заказа.
	amountIsTotal bool
	// amountEditable: сумму можно редактировать вручную.
	amountEditable bool
	// color: цвет отображения статуса в интерфейсе кассы.
	color string
}

var paymentBehaviors = map[PaymentStatus]paymentBehavior{
	PaymentStatusPending:  {amountEditable: true, color: "#ffc107"},
	PaymentStatusPartial:  {amountEditable: true, color: "#fd7e14"},
	PaymentStatusPaid:     {dateIsNow: true, amountIsTotal: true, color: "#28a745"},
	PaymentStatusFailed:   {amountEditable: true, color: "#dc3545"},
	PaymentStatusRefunded: {color: "#6c757d"},
}

// дефолтное поведение для значений вне каталога (не должно встречаться после Parse).
var defaultPaymentBehavior = paymentBehavior{amountEditable: true, color: "#333333"}

func (s PaymentStatus) behavior() paymentBehavior {
	if b, ok := paymentBehaviors[s]; ok {
		return b
	}
	return defaultPaymentBehavior
}

// ComputedPaymentDate возвращает дату оплаты, выводимую из статуса:
// paid — текущий момент, остальные — отсутствие даты.
func (s PaymentStatus) ComputedPaymentDate(now time.Time) (time.Time, bool) {
	if s.behavior().dateIsNow {
		return now, true
	}
	return time.Time{}, false
}

// ComputedAmountPaid возвращает сумму оплаты, выводимую из статуса:
// paid — полная стоимость, refunded — ноль, остальные — ноль.
func (s PaymentStatus) ComputedAmountPaid(totalCentavos int64) int64 {
	if s.behavior().amountIsTotal {
		return totalCentavos
	}
	return 0
}

// AmountEditable сообщает, можно ли редактировать сумму вручную.
// Для paid и refunded сумма производная и недоступна для ввода.
func (s PaymentStatus) AmountEditable() bool {
	return s.behavior().amountEditable
}

// DisplayColor возвращает цвет статуса для интерфейса кассы.
func (s PaymentStatus) DisplayColor() string {
	return s.behavior().color
}
