package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// paymentRepositoryInMemory хранит платежи по одному на заказ.
type paymentRepositoryInMemory struct {
	mu      sync.RWMutex
	byOrder map[string]domain.Payment
}

// NewPaymentRepository возвращает in-memory реализацию PaymentRepository.
func NewPaymentRepository() domain.PaymentRepository {
	return &paymentRepositoryInMemory{
		byOrder: make(map[string]domain.Payment),
	}
}

// Create сохраняет платёж, если по заказу его ещё нет.
func (r *paymentRepositoryInMemory) Create(payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOrder[payment.OrderID]; exists {
		return domain.ErrVersionConflict
	}
	r.byOrder[payment.OrderID] = payment
	return nil
}

// GetByOrder возвращает платёж заказа или ErrPaymentNotFound.
func (r *paymentRepositoryInMemory) GetByOrder(orderID string) (domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.byOrder[orderID]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// Save перезаписывает платёж, проверяя версию (optimistic locking).
func (r *paymentRepositoryInMemory) Save(payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byOrder[payment.OrderID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	if current.Version != payment.Version {
		return domain.ErrVersionConflict
	}
	payment.Version++
	r.byOrder[payment.OrderID] = payment
	return nil
}

var _ domain.PaymentRepository = (*paymentRepositoryInMemory)(nil)
