package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы клиента с опциональным ограничением на количество.
	ListByCustomer(customerID string, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
}

// PaymentRepository описывает хранилище платежей (один активный платёж на заказ).
type PaymentRepository interface {
	// Create сохраняет платёж по заказу.
	Create(payment Payment) error
	// GetByOrder возвращает платёж по заказу или ErrPaymentNotFound.
	GetByOrder(orderID string) (Payment, error)
	// Save применяет обновления к платежу с учётом optimistic locking.
	Save(payment Payment) error
}

// CustomerRepository описывает хранилище клиентов.
type CustomerRepository interface {
	Create(customer Customer) error
	Get(id string) (Customer, error)
	List(limit int) ([]Customer, error)
	Save(customer Customer) error
}

// ServiceRepository описывает каталог услуг прачечной.
type ServiceRepository interface {
	Create(service Service) error
	Get(id string) (Service, error)
	List(limit int) ([]Service, error)
}
