package domain

import "time"

// Payment описывает расчёт, связанный с заказом.
// В модели существует одна активная запись платежа на заказ.
type Payment struct {
	ID             string
	OrderID        string
	AmountCentavos int64
	// PaidAt — дата оплаты; нулевое значение означает отсутствие даты.
	PaidAt    time.Time
	MethodID  string
	Status    PaymentStatus
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет корректность полей платежа и возвращает ошибки, если они есть.
func (p *Payment) Validate() []error {
	var errs []error

	if p.OrderID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if p.AmountCentavos < 0 {
		errs = append(errs, ErrPaymentAmountNegative)
	}
	if _, err := ParsePaymentStatus(string(p.Status)); err != nil {
		errs = append(errs, ErrUnknownPaymentStatus)
	}

	return errs
}
