package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewLifecycleMetrics(t *testing.T) {
	metrics := newLifecycleMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newLifecycleMetricsWithRegisterer should not return nil")
	}

	if metrics.ordersCreated == nil {
		t.Error("ordersCreated counter should not be nil")
	}

	if metrics.transitionsAccepted == nil {
		t.Error("transitionsAccepted counter should not be nil")
	}

	if metrics.transitionsRejected == nil {
		t.Error("transitionsRejected counter should not be nil")
	}

	if metrics.autoAdvanced == nil {
		t.Error("autoAdvanced counter should not be nil")
	}

	if metrics.paymentsRecorded == nil {
		t.Error("paymentsRecorded counter should not be nil")
	}

	if metrics.refundsIssued == nil {
		t.Error("refundsIssued counter should not be nil")
	}

	if metrics.operationDuration == nil {
		t.Error("operationDuration histogram vec should not be nil")
	}

	if metrics.timelineEvents == nil {
		t.Error("timelineEvents counter should not be nil")
	}

	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}

	if metrics.activeOrders == nil {
		t.Error("activeOrders gauge should not be nil")
	}
}

func TestNewLifecycleMetrics_ReuseRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newLifecycleMetricsWithRegisterer(reg)
	second := newLifecycleMetricsWithRegisterer(reg)

	// Повторная регистрация возвращает уже существующие коллекторы.
	first.RecordOrderCreated()
	second.RecordOrderCreated()

	metric := &dto.Metric{}
	if err := first.ordersCreated.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected shared counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordOrderCreated(t *testing.T) {
	metrics := newLifecycleMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOrderCreated()

	metric := &dto.Metric{}
	if err := metrics.ordersCreated.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", metric.Counter.GetValue())
	}

	gaugeMetric := &dto.Metric{}
	if err := metrics.activeOrders.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected 1.0 active order, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestRecordTransitionVerdicts(t *testing.T) {
	metrics := newLifecycleMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordTransitionAccepted()
	metrics.RecordTransitionAccepted()
	metrics.RecordTransitionRejected()

	accepted := &dto.Metric{}
	if err := metrics.transitionsAccepted.Write(accepted); err != nil {
		t.Fatalf("failed to write accepted metric: %v", err)
	}
	if accepted.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 accepted transitions, got %f", accepted.Counter.GetValue())
	}

	rejected := &dto.Metric{}
	if err := metrics.transitionsRejected.Write(rejected); err != nil {
		t.Fatalf("failed to write rejected metric: %v", err)
	}
	if rejected.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 rejected transition, got %f", rejected.Counter.GetValue())
	}
}

func TestRecordAutoAdvanceAndRefund(t *testing.T) {
	metrics := newLifecycleMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordAutoAdvance()
	metrics.RecordRefundIssued()
	metrics.RecordRefundIssued()

	auto := &dto.Metric{}
	if err := metrics.autoAdvanced.Write(auto); err != nil {
		t.Fatalf("failed to write auto metric: %v", err)
	}
	if auto.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 auto-advance, got %f", auto.Counter.GetValue())
	}

	refunds := &dto.Metric{}
	if err := metrics.refundsIssued.Write(refunds); err != nil {
		t.Fatalf("failed to write refunds metric: %v", err)
	}
	if refunds.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 refunds, got %f", refunds.Counter.GetValue())
	}
}

func TestRecordOperationDuration(t *testing.T) {
	metrics := newLifecycleMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOperationDuration("create_order", 50*time.Millisecond)
	metrics.RecordOperationDuration("change_status", 100*time.Millisecond)
	metrics.RecordOperationDuration("create_order", 25*time.Millisecond)

	observer := metrics.operationDuration.WithLabelValues("create_order")

	metric := &dto.Metric{}
	if err := observer.(prometheus.Histogram).Write(metric); err != nil {
		t.Fatalf("failed to write histogram metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 samples for create_order, got %d", metric.Histogram.GetSampleCount())
	}
}

func TestOrderLifecycleGauge(t *testing.T) {
	metrics := newLifecycleMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOrderCreated() // active: 1
	metrics.RecordOrderCreated() // active: 2
	metrics.RecordOrderCreated() // active: 3

	metrics.RecordOrderFinished() // active: 2
	metrics.RecordOrderFinished() // active: 1

	gaugeMetric := &dto.Metric{}
	if err := metrics.activeOrders.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected 1 active order, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestRecordTimelineAndOutboxEvents(t *testing.T) {
	metrics := newLifecycleMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordTimelineEvent()
	metrics.RecordTimelineEvent()
	metrics.RecordTimelineEvent()
	metrics.RecordOutboxEvent()
	metrics.RecordOutboxEvent()

	timeline := &dto.Metric{}
	if err := metrics.timelineEvents.Write(timeline); err != nil {
		t.Fatalf("failed to write timeline metric: %v", err)
	}
	if timeline.Counter.GetValue() != 3.0 {
		t.Errorf("expected 3 timeline events, got %f", timeline.Counter.GetValue())
	}

	outbox := &dto.Metric{}
	if err := metrics.outboxEvents.Write(outbox); err != nil {
		t.Fatalf("failed to write outbox metric: %v", err)
	}
	if outbox.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 outbox events, got %f", outbox.Counter.GetValue())
	}
}
