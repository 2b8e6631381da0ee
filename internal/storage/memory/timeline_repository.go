package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// timelineLog хранит историю заказов в памяти: режим разработки и тесты.
// События складываются как пришли, хронология наводится при чтении.
type timelineLog struct {
	mu      sync.RWMutex
	byOrder map[string][]domain.TimelineEvent
}

// NewTimelineRepository создаёт in-memory реализацию TimelineRepository.
func NewTimelineRepository() domain.TimelineRepository {
	return &timelineLog{byOrder: make(map[string][]domain.TimelineEvent)}
}

func (l *timelineLog) Append(event domain.TimelineEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byOrder[event.OrderID] = append(l.byOrder[event.OrderID], event)
	return nil
}

func (l *timelineLog) List(orderID string) ([]domain.TimelineEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := make([]domain.TimelineEvent, len(l.byOrder[orderID]))
	copy(history, l.byOrder[orderID])

	// SliceStable: события одной секунды остаются в порядке записи,
	// как и у ORDER BY occurred, id в postgres-реализации.
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Occurred.Before(history[j].Occurred)
	})
	return history, nil
}

var _ domain.TimelineRepository = (*timelineLog)(nil)
