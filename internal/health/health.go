package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// Status — состояние пробы или сервиса в целом.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// worse возвращает true, если candidate хуже current.
func (s Status) worse(candidate Status) bool {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	return rank[candidate] > rank[s]
}

// Probe проверяет одну зависимость кассы: базу, backlog outbox и т.п.
type Probe interface {
	Name() string
	Probe() Result
}

// Result — итог одной пробы.
type Result struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Detail    string `json:"detail,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Report — сводка всех проб для /healthz.
type Report struct {
	Status        Status    `json:"status"`
	Version       string    `json:"version,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Probes        []Result  `json:"probes,omitempty"`
}

// Monitor прогоняет зарегистрированные пробы и отдаёт сводку.
// Порядок регистрации сохраняется в ответе.
type Monitor struct {
	mu        sync.RWMutex
	probes    []Probe
	version   string
	startedAt time.Time
}

// NewMonitor создаёт монитор здоровья сервиса.
func NewMonitor(version string) *Monitor {
	return &Monitor{version: version, startedAt: time.Now()}
}

// Register добавляет пробу. Вызывается на старте, до запуска серверов.
func (m *Monitor) Register(probe Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes = append(m.probes, probe)
}

// Report прогоняет все пробы. Общий статус — худший из частных.
func (m *Monitor) Report() Report {
	m.mu.RLock()
	probes := make([]Probe, len(m.probes))
	copy(probes, m.probes)
	m.mu.RUnlock()

	report := Report{
		Status:        StatusHealthy,
		Version:       m.version,
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(time.Since(m.startedAt).Seconds()),
	}
	for _, probe := range probes {
		result := probe.Probe()
		report.Probes = append(report.Probes, result)
		if report.Status.worse(result.Status) {
			report.Status = result.Status
		}
	}
	return report
}

// ServeHTTP отдаёт полную сводку. Degraded остаётся 200: касса работает,
// но оператору стоит посмотреть на детали.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	report := m.Report()

	code := http.StatusOK
	if report.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}

// Readiness — обработчик /readyz: без тела, только код.
func (m *Monitor) Readiness(w http.ResponseWriter, _ *http.Request) {
	if m.Report().Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Liveness — обработчик /livez: процесс жив, раз смог ответить.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// PingProbe оборачивает ping-функцию зависимости (например postgres).
type PingProbe struct {
	name string
	ping func() error
}

// NewPingProbe создаёт пробу вокруг ping-функции.
func NewPingProbe(name string, ping func() error) *PingProbe {
	return &PingProbe{name: name, ping: ping}
}

func (p *PingProbe) Name() string { return p.name }

func (p *PingProbe) Probe() Result {
	start := time.Now()
	err := p.ping()
	result := Result{
		Name:      p.name,
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Detail = err.Error()
	}
	return result
}

// OutboxBacklogProbe следит за transactional outbox: если самая старая
// pending-запись висит дольше порога, события заказов не доходят до шины.
// Это degraded, а не unhealthy: приём заказов продолжается.
type OutboxBacklogProbe struct {
	repo   domain.OutboxRepository
	maxAge time.Duration
}

// NewOutboxBacklogProbe создаёт пробу backlog-а с порогом maxAge.
func NewOutboxBacklogProbe(repo domain.OutboxRepository, maxAge time.Duration) *OutboxBacklogProbe {
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	return &OutboxBacklogProbe{repo: repo, maxAge: maxAge}
}

func (p *OutboxBacklogProbe) Name() string { return "outbox-backlog" }

func (p *OutboxBacklogProbe) Probe() Result {
	start := time.Now()
	stats, err := p.repo.Stats()
	result := Result{Name: p.Name(), LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Detail = err.Error()
		return result
	}

	result.Status = StatusHealthy
	if stats.PendingCount == 0 || stats.OldestPendingAt.IsZero() {
		return result
	}

	age := time.Since(stats.OldestPendingAt)
	result.Detail = fmt.Sprintf("%d pending, oldest %s", stats.PendingCount, age.Truncate(time.Second))
	if age > p.maxAge {
		result.Status = StatusDegraded
	}
	return result
}
