package domain

import "time"

// Customer — клиент прачечной.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Email     string // Может быть пустым; адрес и email не обязательны.
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет контактные данные клиента через общий валидатор полей.
func (c *Customer) Validate() ValidationResult {
	return ValidateCustomerInfo(c.Name, c.Phone, c.Email, c.Address)
}
