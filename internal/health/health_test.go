package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

type staticProbe struct {
	name   string
	result Result
}

func (p *staticProbe) Name() string  { return p.name }
func (p *staticProbe) Probe() Result { return p.result }

func TestMonitor_Report_WorstStatusWins(t *testing.T) {
	monitor := NewMonitor("1.2.3")
	monitor.Register(&staticProbe{name: "postgres", result: Result{Name: "postgres", Status: StatusHealthy}})
	monitor.Register(&staticProbe{name: "outbox-backlog", result: Result{Name: "outbox-backlog", Status: StatusDegraded}})

	report := monitor.Report()

	if report.Status != StatusDegraded {
		t.Fatalf("expected degraded overall status, got %s", report.Status)
	}
	if report.Version != "1.2.3" {
		t.Errorf("expected version in report, got %q", report.Version)
	}
	if len(report.Probes) != 2 {
		t.Fatalf("expected 2 probe results, got %d", len(report.Probes))
	}
	if report.Probes[0].Name != "postgres" || report.Probes[1].Name != "outbox-backlog" {
		t.Errorf("expected registration order preserved, got %v", report.Probes)
	}
}

func TestMonitor_ServeHTTP_DegradedStaysOK(t *testing.T) {
	monitor := NewMonitor("dev")
	monitor.Register(&staticProbe{name: "outbox-backlog", result: Result{Name: "outbox-backlog", Status: StatusDegraded, Detail: "3 pending, oldest 7m0s"}})

	rec := httptest.NewRecorder()
	monitor.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("degraded service must still answer 200, got %d", rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Status != StatusDegraded {
		t.Errorf("expected degraded status in body, got %s", report.Status)
	}
}

func TestMonitor_ServeHTTP_UnhealthyReturns503(t *testing.T) {
	monitor := NewMonitor("dev")
	monitor.Register(&staticProbe{name: "postgres", result: Result{Name: "postgres", Status: StatusUnhealthy, Detail: "connection refused"}})

	rec := httptest.NewRecorder()
	monitor.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMonitor_Readiness(t *testing.T) {
	healthy := NewMonitor("dev")
	healthy.Register(&staticProbe{name: "postgres", result: Result{Name: "postgres", Status: StatusHealthy}})

	rec := httptest.NewRecorder()
	healthy.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rec.Code)
	}

	broken := NewMonitor("dev")
	broken.Register(&staticProbe{name: "postgres", result: Result{Name: "postgres", Status: StatusUnhealthy}})

	rec = httptest.NewRecorder()
	broken.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected not ready, got %d", rec.Code)
	}
}

func TestLiveness(t *testing.T) {
	rec := httptest.NewRecorder()
	Liveness(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPingProbe(t *testing.T) {
	ok := NewPingProbe("postgres", func() error { return nil })
	if result := ok.Probe(); result.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %+v", result)
	}

	failing := NewPingProbe("postgres", func() error { return errors.New("connection refused") })
	result := failing.Probe()
	if result.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %+v", result)
	}
	if result.Detail != "connection refused" {
		t.Errorf("expected error detail, got %q", result.Detail)
	}
}

type staticOutboxStats struct {
	domain.OutboxRepository
	stats domain.OutboxStats
	err   error
}

func (s *staticOutboxStats) Stats() (domain.OutboxStats, error) { return s.stats, s.err }

func TestOutboxBacklogProbe(t *testing.T) {
	t.Run("empty backlog is healthy", func(t *testing.T) {
		probe := NewOutboxBacklogProbe(&staticOutboxStats{}, time.Minute)
		if result := probe.Probe(); result.Status != StatusHealthy {
			t.Fatalf("expected healthy, got %+v", result)
		}
	})

	t.Run("fresh backlog is healthy", func(t *testing.T) {
		probe := NewOutboxBacklogProbe(&staticOutboxStats{stats: domain.OutboxStats{
			PendingCount:    2,
			OldestPendingAt: time.Now().Add(-time.Second),
		}}, time.Minute)
		if result := probe.Probe(); result.Status != StatusHealthy {
			t.Fatalf("expected healthy, got %+v", result)
		}
	})

	t.Run("stale backlog is degraded", func(t *testing.T) {
		probe := NewOutboxBacklogProbe(&staticOutboxStats{stats: domain.OutboxStats{
			PendingCount:    5,
			OldestPendingAt: time.Now().Add(-10 * time.Minute),
		}}, time.Minute)
		result := probe.Probe()
		if result.Status != StatusDegraded {
			t.Fatalf("expected degraded, got %+v", result)
		}
		if result.Detail == "" {
			t.Error("expected backlog detail for the operator")
		}
	})

	t.Run("stats error is unhealthy", func(t *testing.T) {
		probe := NewOutboxBacklogProbe(&staticOutboxStats{err: errors.New("outbox table missing")}, time.Minute)
		if result := probe.Probe(); result.Status != StatusUnhealthy {
			t.Fatalf("expected unhealthy, got %+v", result)
		}
	})
}
