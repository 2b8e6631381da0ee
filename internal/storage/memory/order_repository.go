package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// orderShelf держит заказы прачечной в памяти. Используется в локальной
// разработке и тестах вместо Postgres.
type orderShelf struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewOrderRepository возвращает in-memory реализацию OrderRepository.
func NewOrderRepository() domain.OrderRepository {
	return &orderShelf{orders: make(map[string]domain.Order)}
}

func (s *orderShelf) Create(order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return domain.ErrVersionConflict
	}
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *orderShelf) Get(id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// ListByCustomer отдаёт заказы клиента от новых к старым, как это делает
// SQL-реализация (ORDER BY created_at DESC, id DESC).
func (s *orderShelf) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Order
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			result = append(result, cloneOrder(order))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	if result == nil {
		result = []domain.Order{}
	}
	return result, nil
}

// Save принимает заказ только с той версией, что видел вызывающий,
// и сам двигает версию дальше. Потерянные обновления при параллельных
// правках одного заказа превращаются в ErrVersionConflict.
func (s *orderShelf) Save(order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrVersionConflict
	}

	order.Version++
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

// cloneOrder копирует заказ вместе со слайсом позиций: вызывающий не должен
// видеть мутации чужих копий.
func cloneOrder(src domain.Order) domain.Order {
	dst := src
	dst.Items = append([]domain.OrderItem(nil), src.Items...)
	return dst
}

var _ domain.OrderRepository = (*orderShelf)(nil)
