package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// serviceRepositoryInMemory — in-memory каталог услуг прачечной.
type serviceRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Service
}

// NewServiceRepository возвращает in-memory репозиторий каталога услуг.
func NewServiceRepository() domain.ServiceRepository {
	return &serviceRepositoryInMemory{
		items: make(map[string]domain.Service),
	}
}

// Create добавляет услугу в каталог.
func (r *serviceRepositoryInMemory) Create(service domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[service.ID]; exists {
		return domain.ErrVersionConflict
	}
	r.items[service.ID] = service
	return nil
}

// Get возвращает услугу или ErrServiceNotFound.
func (r *serviceRepositoryInMemory) Get(id string) (domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, ok := r.items[id]
	if !ok {
		return domain.Service{}, domain.ErrServiceNotFound
	}
	return service, nil
}

// List возвращает услуги, отсортированные по имени.
func (r *serviceRepositoryInMemory) List(limit int) ([]domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Service, 0, len(r.items))
	for _, service := range r.items {
		result = append(result, service)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

var _ domain.ServiceRepository = (*serviceRepositoryInMemory)(nil)
