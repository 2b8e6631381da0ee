package domain

import "strings"

// ValidationResult — итог одной проверки: упорядоченный список нарушений.
// Валидаторы — чистые функции; повторный вызов с теми же входами даёт
// идентичный результат, скрытого состояния между вызовами нет.
type ValidationResult struct {
	Issues []string
}

// OK сообщает, что нарушений не найдено.
func (r ValidationResult) OK() bool {
	return len(r.Issues) == 0
}

// Message возвращает все нарушения одним маркированным сообщением.
func (r ValidationResult) Message() string {
	if r.OK() {
		return ""
	}
	lines := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		lines = append(lines, "• "+issue)
	}
	return strings.Join(lines, "\n")
}

// Err возвращает *ValidationError, если нарушения есть, иначе nil.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Issues: r.Issues}
}

// ValidateCustomerInfo проверяет контактные данные клиента.
// Адрес не обязателен; email проверяется только при наличии.
func ValidateCustomerInfo(name, phone, email, _ string) ValidationResult {
	var res ValidationResult

	if strings.TrimSpace(name) == "" {
		res.Issues = append(res.Issues, "Customer name is required")
	}
	if strings.TrimSpace(phone) == "" {
		res.Issues = append(res.Issues, "Contact number is required")
	}
	if email != "" && !strings.Contains(email, "@") {
		res.Issues = append(res.Issues, "Invalid email format")
	}

	return res
}

// ValidateOrderItems проверяет список позиций заказа, собирая все нарушения
// за один проход и называя проблемную услугу.
func ValidateOrderItems(items []OrderItem) ValidationResult {
	var res ValidationResult

	if len(items) == 0 {
		res.Issues = append(res.Issues, "At least one service must be selected")
		return res
	}

	for _, item := range items {
		name := item.ServiceName
		if name == "" {
			name = "service"
		}
		if item.Qty <= 0 {
			res.Issues = append(res.Issues, "Invalid quantity for "+name)
		}
		if item.PriceCentavos <= 0 {
			res.Issues = append(res.Issues, "Invalid price for "+name)
		}
	}

	return res
}

// ValidatePayment проверяет согласованность суммы оплаты со статусом.
func ValidatePayment(amountCentavos, totalCentavos int64, status PaymentStatus) ValidationResult {
	var res ValidationResult

	if amountCentavos < 0 {
		res.Issues = append(res.Issues, "Amount paid cannot be negative")
	}
	if status == PaymentStatusPaid && amountCentavos < totalCentavos {
		res.Issues = append(res.Issues, "Amount paid is less than total price")
	}

	return res
}
