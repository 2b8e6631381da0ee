package domain

import "time"

// OrderItem представляет одну услугу в заказе.
// После сохранения позиция считается неизменяемой.
type OrderItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ServiceID — идентификатор услуги из каталога.
	ServiceID string
	// ServiceName — снимок имени услуги на момент оформления (для сообщений и чеков).
	ServiceName string
	// Qty — количество единиц услуги.
	Qty int32
	// PriceCentavos — цена за единицу в сентаво.
	PriceCentavos int64
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// Order агрегирует состояние заказа прачечной и его позиции.
type Order struct {
	ID            string
	CustomerID    string
	Status        OrderStatus
	TotalCentavos int64
	Items         []OrderItem
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalCentavos < 0 {
		errs = append(errs, ErrTotalNegative)
	}

	// Сверяем стоимость заказа с суммой позиций: qty * price.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceCentavos <= 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += int64(item.Qty) * item.PriceCentavos
	}
	if calc != o.TotalCentavos {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}
